// Package blobstore is a small key/value store for opaque text blobs such as
// profile documents.
package blobstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("key not found in blob store")
	ErrClosed     = errors.New("blob store is closed")
	ErrInvalidKey = errors.New("invalid blob store key")
)

type Store interface {
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error

	Close() error
}

type Options struct {
	// TTL of zero keeps values until they are deleted.
	TTL time.Duration

	RedisAddr string

	RedisPassword string

	RedisDB int
}

func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
