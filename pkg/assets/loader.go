package assets

import (
	"context"

	"github.com/fxamacker/cbor/v2"
	"github.com/repeale/fp-go/option"
	"github.com/sasha-s/go-deadlock"
	"gopkg.in/yaml.v3"
)

// Format decodes the raw contents of an asset.
type Format[T any] func(data []byte) (T, error)

func Bytes(data []byte) ([]byte, error) {
	return data, nil
}

func Text(data []byte) (string, error) {
	return string(data), nil
}

func YAML[T any](data []byte) (T, error) {
	var value T
	err := yaml.Unmarshal(data, &value)
	return value, err
}

func CBOR[T any](data []byte) (T, error) {
	var value T
	err := cbor.Unmarshal(data, &value)
	return value, err
}

type Handle[T any] struct {
	// The logical path the handle was loaded with
	Asset string
	Pack  string
	Path  string
	Value T
}

// Loader keeps decoded assets keyed by their logical path. Dropping a handle
// with Unload only forgets it; callers holding it keep their copy.
type Loader[T any] struct {
	fetcher *AssetFetcher
	format  Format[T]

	handles map[string]*Handle[T]
	mutex   deadlock.RWMutex
}

func NewLoader[T any](fetcher *AssetFetcher, format Format[T]) *Loader[T] {
	return &Loader[T]{
		fetcher: fetcher,
		format:  format,
		handles: make(map[string]*Handle[T]),
	}
}

// Get returns the handle for asset if it is already loaded.
func (l *Loader[T]) Get(asset string) opt.Option[*Handle[T]] {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	handle, ok := l.handles[asset]
	if !ok {
		return opt.None[*Handle[T]]()
	}

	return opt.Some(handle)
}

// Load returns the cached handle for asset or fetches and decodes it.
func (l *Loader[T]) Load(ctx context.Context, asset string) (*Handle[T], error) {
	if handle := l.Get(asset); opt.IsSome(handle) {
		return handle.Value, nil
	}

	result := l.fetcher.fetch(ctx, asset)
	if result.Err != nil {
		return nil, result.Err
	}

	value, err := l.format(result.Data)
	if err != nil {
		return nil, err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	// Someone else may have loaded it while we were fetching
	if existing, ok := l.handles[asset]; ok {
		return existing, nil
	}

	handle := &Handle[T]{
		Asset: asset,
		Pack:  result.Resolution.Pack,
		Path:  result.Resolution.Path,
		Value: value,
	}
	l.handles[asset] = handle
	return handle, nil
}

// GetOrLoad is Load for callers that only care about the value.
func (l *Loader[T]) GetOrLoad(ctx context.Context, asset string) opt.Option[T] {
	handle, err := l.Load(ctx, asset)
	if err != nil {
		logger := l.fetcher.resolver.Logger()
		logger.Debug().Err(err).Str("asset", asset).Msg("could not load asset")
		return opt.None[T]()
	}

	return opt.Some(handle.Value)
}

func (l *Loader[T]) Unload(asset string) {
	l.mutex.Lock()
	delete(l.handles, asset)
	l.mutex.Unlock()
}

func (l *Loader[T]) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.handles)
}
