package assets

import (
	"errors"
	"path/filepath"
	"slices"

	"github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resolver maps logical asset paths onto the asset packs found under a base
// directory.
//
// Given the layout
//
//	/assets/base/sprites/player.png
//	/assets/base/models/cube.obj
//	/assets/mod1/sprites/player.png
//	/assets/mod1/sounds/click.ogg
//	/assets/mod2/sounds/click.ogg
//
// with "base" as the default pack, "models/cube.obj" resolves into base and
// "sprites/player.png" into mod1. "sounds/click.ogg" resolves to whichever of
// mod1 and mod2 was enumerated last.
//
// A Resolver performs no locking. Call Packs once before sharing it between
// goroutines; resolution after that only reads.
type Resolver struct {
	root        Root
	logger      zerolog.Logger
	base        string
	defaultPack string

	// nil until the first successful listing of base
	packs []string
}

var ErrNotFound = errors.New("asset not found in any pack")

// Resolution is the winning pack for an asset.
type Resolution struct {
	Pack string
	Path string
}

// NewResolver creates a resolver over the packs directly under base. It
// panics if defaultPack is empty.
func NewResolver(root Root, logger zerolog.Logger, base string, defaultPack string) *Resolver {
	r := &Resolver{
		root:        root,
		logger:      logger,
		base:        normalizeBase(base),
		defaultPack: NormalizePack(defaultPack),
	}
	r.Packs()
	return r
}

// NewOSResolver creates a resolver over the local filesystem that logs
// through the global logger.
func NewOSResolver(base string, defaultPack string) *Resolver {
	logger := log.With().Str("service", "assets").Logger()
	return NewResolver(OSRoot{}, logger, base, defaultPack)
}

func (r *Resolver) Logger() zerolog.Logger {
	return r.logger
}

func (r *Resolver) Root() Root {
	return r.root
}

func (r *Resolver) Base() string {
	return r.base
}

func (r *Resolver) DefaultPack() string {
	return r.defaultPack
}

// Packs returns the packs under the base directory in enumeration order. The
// list is read from disk once and cached for the lifetime of the resolver. A
// failed listing is not cached and is retried on the next call. Resolution
// never lists the base directory itself.
func (r *Resolver) Packs() []string {
	if r.packs != nil {
		return slices.Clone(r.packs)
	}

	entries, err := r.root.Entries(r.base)
	if err != nil {
		r.logger.Error().Err(err).Str("base", r.base).Msg("failed to list asset packs")
		return []string{}
	}

	packs := make([]string, 0, len(entries))
	for _, entry := range entries {
		pack, err := ParsePack(entry)
		if err != nil {
			continue
		}
		packs = append(packs, pack)
	}

	r.packs = packs
	return slices.Clone(r.packs)
}

func (r *Resolver) packPath(pack string, asset string) string {
	return filepath.Join(r.base, pack, filepath.FromSlash(asset))
}

func (r *Resolver) lookup(pack string, asset string) opt.Option[string] {
	target := r.packPath(pack, asset)
	if r.root.Exists(target) {
		return opt.Some(target)
	}

	r.logger.Warn().Str("path", target).Msg("asset not found in pack")
	return opt.None[string]()
}

// ResolvePack finds the pack that serves asset. The default pack is checked
// first and every other pack may override it; among those the last one in
// enumeration order wins.
func (r *Resolver) ResolvePack(asset string) opt.Option[Resolution] {
	result := opt.None[Resolution]()

	found := r.lookup(r.defaultPack, asset)
	if opt.IsSome(found) {
		result = opt.Some(Resolution{
			Pack: r.defaultPack,
			Path: found.Value,
		})
	}

	for _, pack := range r.packs {
		if pack == r.defaultPack {
			continue
		}

		found := r.lookup(pack, asset)
		if opt.IsNone(found) {
			continue
		}

		result = opt.Some(Resolution{
			Pack: pack,
			Path: found.Value,
		})
	}

	return result
}

// Resolve returns the absolute path of the file that should be used for
// asset, if any pack has it.
func (r *Resolver) Resolve(asset string) opt.Option[string] {
	resolved := r.ResolvePack(asset)
	if opt.IsNone(resolved) {
		return opt.None[string]()
	}

	return opt.Some(resolved.Value.Path)
}

// Providers lists every pack containing asset, lowest priority first. The
// last element is the pack Resolve picks.
func (r *Resolver) Providers(asset string) []string {
	providers := make([]string, 0)

	if r.root.Exists(r.packPath(r.defaultPack, asset)) {
		providers = append(providers, r.defaultPack)
	}

	for _, pack := range r.packs {
		if pack == r.defaultPack {
			continue
		}

		if r.root.Exists(r.packPath(pack, asset)) {
			providers = append(providers, pack)
		}
	}

	return providers
}
