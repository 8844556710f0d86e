package memory

import (
	"context"
	"sync"

	"github.com/michaelprosario/career-catalyst/common/blobstore"
)

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := blobstore.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return blobstore.ErrClosed
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, blobstore.ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := blobstore.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return blobstore.ErrClosed
	}
	delete(s.values, key)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
