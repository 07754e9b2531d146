package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFetcher(t *testing.T, r *Resolver, cache Store) *AssetFetcher {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fetcher := NewAssetFetcher(r, cache)
	fetcher.PollDownloads(ctx)
	return fetcher
}

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	store := FSStore(t.TempDir())

	_, err := store.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "key", []byte("value")))
	data, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), data)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	base := makePacks(t)
	r, _ := newTestResolver(base, "main")
	fetcher := startFetcher(t, r, nil)

	data, err := fetcher.Fetch(ctx, "config/ov1")
	require.NoError(t, err)
	assert.Equal(t, "mod1", string(data))

	_, err = fetcher.Fetch(ctx, "config/nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchCached(t *testing.T) {
	ctx := context.Background()
	base := makePacks(t)
	r, _ := newTestResolver(base, "main")

	cache := FSStore(t.TempDir())
	fetcher := startFetcher(t, r, cache)

	data, err := fetcher.Fetch(ctx, "config/unique")
	require.NoError(t, err)
	assert.Equal(t, "main", string(data))

	target := filepath.Join(base, "main", "config", "unique")
	info, err := os.Stat(target)
	require.NoError(t, err)

	key := CacheKey(target, info)
	cached, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "main", string(cached))

	// An unchanged file is served from the cache
	require.NoError(t, cache.Set(ctx, key, []byte("cached")))
	data, err = fetcher.Fetch(ctx, "config/unique")
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))

	// Editing the file moves it to a new key
	require.NoError(t, os.WriteFile(target, []byte("changed"), 0644))
	later := info.ModTime().Add(time.Minute)
	require.NoError(t, os.Chtimes(target, later, later))

	data, err = fetcher.Fetch(ctx, "config/unique")
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))

	edited, err := os.Stat(target)
	require.NoError(t, err)
	assert.NotEqual(t, key, CacheKey(target, edited))

	cached, err = cache.Get(ctx, CacheKey(target, edited))
	require.NoError(t, err)
	assert.Equal(t, "changed", string(cached))
}

func TestFetchCancelled(t *testing.T) {
	base := makePacks(t)
	r, _ := newTestResolver(base, "main")

	// Nobody is polling
	fetcher := NewAssetFetcher(r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, "config/unique")
	assert.ErrorIs(t, err, context.Canceled)
}

type settings struct {
	Name  string `yaml:"name"`
	Speed int    `yaml:"speed"`
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	base := makePacks(t)
	writeAsset(t, base, "main", "config/player.yaml", "name: base\nspeed: 1\n")
	writeAsset(t, base, "mod2", "config/player.yaml", "name: fast\nspeed: 5\n")

	r, _ := newTestResolver(base, "main")
	loader := NewLoader[settings](startFetcher(t, r, nil), YAML[settings])

	assert.True(t, opt.IsNone(loader.Get("config/player.yaml")))

	handle, err := loader.Load(ctx, "config/player.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mod2", handle.Pack)
	assert.Equal(t, settings{Name: "fast", Speed: 5}, handle.Value)
	assert.Equal(t, 1, loader.Len())

	cached := loader.Get("config/player.yaml")
	require.True(t, opt.IsSome(cached))
	assert.Same(t, handle, cached.Value)

	again, err := loader.Load(ctx, "config/player.yaml")
	require.NoError(t, err)
	assert.Same(t, handle, again)

	loader.Unload("config/player.yaml")
	assert.True(t, opt.IsNone(loader.Get("config/player.yaml")))
	assert.Equal(t, 0, loader.Len())

	_, err = loader.Load(ctx, "config/nothing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderGetOrLoad(t *testing.T) {
	ctx := context.Background()
	base := makePacks(t)
	writeAsset(t, base, "main", "config/broken.yaml", "name: [")

	r, _ := newTestResolver(base, "main")
	loader := NewLoader[string](startFetcher(t, r, nil), Text)

	value := loader.GetOrLoad(ctx, "config/uniqueother")
	require.True(t, opt.IsSome(value))
	assert.Equal(t, "mod1", value.Value)

	assert.True(t, opt.IsNone(loader.GetOrLoad(ctx, "config/nothing")))

	broken := NewLoader[settings](startFetcher(t, r, nil), YAML[settings])
	assert.True(t, opt.IsNone(broken.GetOrLoad(ctx, "config/broken.yaml")))
	assert.Equal(t, 0, broken.Len())
}
