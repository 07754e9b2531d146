package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v9"
)

// Store caches the contents of resolved pack files by CacheKey.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

var ErrCacheMiss = errors.New("pack file not in cache")

const (
	PACK_FILE_KEY    = "packs-file-%s"
	PACK_FILE_EXPIRY = time.Duration(1 * time.Hour)
)

// An FSStore keeps one file per key in a directory.
type FSStore string

func (f FSStore) entry(key string) string {
	return filepath.Join(string(f), key)
}

func (f FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	target := f.entry(key)
	if !FileExists(target) {
		return nil, ErrCacheMiss
	}

	return os.ReadFile(target)
}

func (f FSStore) Set(ctx context.Context, key string, data []byte) error {
	return WriteBytes(data, f.entry(key))
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    PACK_FILE_EXPIRY,
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(PACK_FILE_KEY, key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}

	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, fmt.Sprintf(PACK_FILE_KEY, key), data, r.ttl).Err()
}

// RedisCache is a RedisStore whose entries expire after ttl instead of the
// default hour.
type RedisCache struct {
	*RedisStore
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	store := NewRedisStore(client)
	store.ttl = ttl
	return &RedisCache{
		RedisStore: store,
	}
}

var _ Store = (*FSStore)(nil)
var _ Store = (*RedisStore)(nil)
var _ Store = (*RedisCache)(nil)
