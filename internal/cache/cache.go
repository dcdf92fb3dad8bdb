package cache

import (
	"context"
	"time"
)

// BytesCache — байтовый кэш/KV. ttl <= 0 означает хранение без срока.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
