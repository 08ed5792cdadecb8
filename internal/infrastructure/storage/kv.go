// internal/infrastructure/storage/kv.go
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no record.
var ErrNotFound = errors.New("storage: record not found")

// KV is a small key/value store holding whole serialized records.
// Writes always overwrite the previous value.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Scoped returns a KV whose keys are namespaced to a single shopper session.
func Scoped(kv KV, sessionID string) KV {
	return &scopedKV{
		kv:     kv,
		prefix: fmt.Sprintf("session:%s:", sessionID),
	}
}

type scopedKV struct {
	kv     KV
	prefix string
}

func (s *scopedKV) Get(ctx context.Context, key string) ([]byte, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scopedKV) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scopedKV) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.prefix+key)
}
