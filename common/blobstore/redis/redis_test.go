package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/michaelprosario/career-catalyst/common/blobstore"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := New(blobstore.Options{RedisAddr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := s.Put(ctx, "profile:u1:name", []byte("Ada")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.Get(ctx, "profile:u1:name")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "Ada" {
		t.Fatalf("Get() = %q, want %q", got, "Ada")
	}
	if err := s.Delete(ctx, "profile:u1:name"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "profile:u1:name"); !errors.Is(err, blobstore.ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPutWithTTLExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, blobstore.ErrNotFound) {
		t.Fatalf("Get() after ttl error = %v, want ErrNotFound", err)
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	s, _ := newTestStore(t, 0)
	if err := s.Put(context.Background(), "", []byte("v")); !errors.Is(err, blobstore.ErrInvalidKey) {
		t.Fatalf("Put(\"\") error = %v, want ErrInvalidKey", err)
	}
}
