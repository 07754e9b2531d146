package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/cespare/xxhash/v2"
	"github.com/repeale/fp-go/option"
)

type FetchResult struct {
	Resolution Resolution
	Data       []byte
	Err        error
}

type Job struct {
	Asset  string
	Result chan FetchResult
}

// AssetFetcher reads resolved assets, going through cache first. All
// resolution happens on the goroutine started by PollDownloads, so the
// resolver is never touched concurrently.
type AssetFetcher struct {
	jobs     chan Job
	resolver *Resolver
	cache    Store
}

// NewAssetFetcher creates a fetcher. cache may be nil.
func NewAssetFetcher(resolver *Resolver, cache Store) *AssetFetcher {
	return &AssetFetcher{
		jobs:     make(chan Job),
		resolver: resolver,
		cache:    cache,
	}
}

// CacheKey is the key a resolved file is stored under. Size and modification
// time are part of the key so an edited pack file gets a fresh entry.
func CacheKey(path string, info fs.FileInfo) string {
	digest := xxhash.New()
	fmt.Fprintf(digest, "%s\x00%d\x00%d", path, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%016x", digest.Sum64())
}

func (m *AssetFetcher) getAsset(ctx context.Context, asset string) FetchResult {
	resolved := m.resolver.ResolvePack(asset)
	if opt.IsNone(resolved) {
		return FetchResult{Err: ErrNotFound}
	}

	resolution := resolved.Value
	root := m.resolver.Root()

	info, err := root.Stat(resolution.Path)
	if err != nil {
		return FetchResult{Resolution: resolution, Err: err}
	}
	key := CacheKey(resolution.Path, info)

	if m.cache != nil {
		cacheData, err := m.cache.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrCacheMiss) {
			return FetchResult{Resolution: resolution, Err: err}
		}
		if err == nil {
			return FetchResult{Resolution: resolution, Data: cacheData}
		}
	}

	data, err := root.ReadFile(resolution.Path)
	if err != nil {
		return FetchResult{Resolution: resolution, Err: err}
	}

	if m.cache != nil {
		err = m.cache.Set(ctx, key, data)
		if err != nil {
			return FetchResult{Resolution: resolution, Err: err}
		}
	}

	return FetchResult{Resolution: resolution, Data: data}
}

func (m *AssetFetcher) pollAssetJobs(ctx context.Context) {
	for {
		select {
		case job := <-m.jobs:
			job.Result <- m.getAsset(ctx, job.Asset)
		case <-ctx.Done():
			return
		}
	}
}

// PollDownloads serves Fetch calls until ctx is done.
func (m *AssetFetcher) PollDownloads(ctx context.Context) {
	// Discover before anything else can ask for an asset
	m.resolver.Packs()
	go m.pollAssetJobs(ctx)
}

func (m *AssetFetcher) fetch(ctx context.Context, asset string) FetchResult {
	out := make(chan FetchResult, 1)
	select {
	case m.jobs <- Job{
		Asset:  asset,
		Result: out,
	}:
	case <-ctx.Done():
		return FetchResult{Err: ctx.Err()}
	}

	select {
	case result := <-out:
		return result
	case <-ctx.Done():
		return FetchResult{Err: ctx.Err()}
	}
}

// Fetch returns the contents of the file serving asset, or ErrNotFound if no pack
// provides it.
func (m *AssetFetcher) Fetch(ctx context.Context, asset string) ([]byte, error) {
	result := m.fetch(ctx, asset)
	return result.Data, result.Err
}
