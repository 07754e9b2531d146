package assets

import (
	"fmt"
	"path"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/repeale/fp-go/option"
	"gopkg.in/yaml.v3"
)

type IndexEntry struct {
	_    struct{} `cbor:",toarray"`
	Path string   `yaml:"path"`
	// The pack Resolve picks
	Pack     string `yaml:"pack"`
	Resolved string `yaml:"resolved"`
	// Every pack containing Path, lowest priority first
	Providers []string `yaml:"providers,flow"`
	Digest    uint64   `yaml:"digest"`
}

// Overrides reports whether more than one pack provides the entry.
func (e *IndexEntry) Overrides() bool {
	return len(e.Providers) > 1
}

type Index struct {
	Base    string       `yaml:"base"`
	Default string       `yaml:"default"`
	Packs   []string     `yaml:"packs,flow"`
	Entries []IndexEntry `yaml:"entries"`
}

// BuildIndex lists every asset found in any pack along with the pack that
// serves it.
func BuildIndex(r *Resolver) (*Index, error) {
	root := r.Root()

	packs := []string{r.DefaultPack()}
	for _, pack := range r.packs {
		if pack == r.DefaultPack() {
			continue
		}
		packs = append(packs, pack)
	}

	seen := make(map[string]struct{})
	for _, pack := range packs {
		dir := r.packPath(pack, "")
		if !root.Exists(dir) {
			continue
		}

		files, err := root.Walk(dir)
		if err != nil {
			return nil, fmt.Errorf("could not walk pack %s: %w", pack, err)
		}

		for _, file := range files {
			seen[path.Clean(file)] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for file := range seen {
		paths = append(paths, file)
	}
	sort.Strings(paths)

	entries := make([]IndexEntry, 0, len(paths))
	for _, file := range paths {
		resolved := r.ResolvePack(file)
		if opt.IsNone(resolved) {
			continue
		}

		data, err := root.ReadFile(resolved.Value.Path)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", resolved.Value.Path, err)
		}

		entries = append(entries, IndexEntry{
			Path:      file,
			Pack:      resolved.Value.Pack,
			Resolved:  resolved.Value.Path,
			Providers: r.Providers(file),
			Digest:    xxhash.Sum64(data),
		})
	}

	return &Index{
		Base:    r.Base(),
		Default: r.DefaultPack(),
		Packs:   slices.Clone(r.packs),
		Entries: entries,
	}, nil
}

// Overridden returns the entries provided by more than one pack.
func (i *Index) Overridden() []IndexEntry {
	entries := make([]IndexEntry, 0)
	for _, entry := range i.Entries {
		if entry.Overrides() {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (i *Index) Find(asset string) opt.Option[IndexEntry] {
	for _, entry := range i.Entries {
		if entry.Path == asset {
			return opt.Some(entry)
		}
	}

	return opt.None[IndexEntry]()
}

func (i *Index) EncodeCBOR() ([]byte, error) {
	return cbor.Marshal(i)
}

func (i *Index) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(i)
}

func DecodeIndex(data []byte) (*Index, error) {
	var index Index
	if err := cbor.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	return &index, nil
}
