package assets

import (
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuildIndex(t *testing.T) {
	base := makePacks(t)
	r, _ := newTestResolver(base, "main")

	index, err := BuildIndex(r)
	require.NoError(t, err)

	assert.Equal(t, "main", index.Default)
	assert.ElementsMatch(t, []string{"main", "mod1", "mod2"}, index.Packs)

	paths := make([]string, 0)
	for _, entry := range index.Entries {
		paths = append(paths, entry.Path)
	}
	assert.Equal(t, []string{
		"config/ov1",
		"config/ovall",
		"config/unique",
		"config/uniqueother",
	}, paths)

	ov1 := index.Find("config/ov1")
	require.True(t, opt.IsSome(ov1))
	assert.Equal(t, "mod1", ov1.Value.Pack)
	assert.Equal(t, []string{"main", "mod1"}, ov1.Value.Providers)
	assert.Equal(t, filepath.Join(base, "mod1", "config", "ov1"), ov1.Value.Resolved)
	assert.Equal(t, xxhash.Sum64String("mod1"), ov1.Value.Digest)

	unique := index.Find("config/unique")
	require.True(t, opt.IsSome(unique))
	assert.Equal(t, "main", unique.Value.Pack)
	assert.False(t, unique.Value.Overrides())

	overridden := index.Overridden()
	assert.Len(t, overridden, 2)

	assert.True(t, opt.IsNone(index.Find("config/nothing")))
}

func TestIndexEncoding(t *testing.T) {
	base := makePacks(t)
	r, _ := newTestResolver(base, "main")

	index, err := BuildIndex(r)
	require.NoError(t, err)

	data, err := index.EncodeCBOR()
	require.NoError(t, err)

	decoded, err := DecodeIndex(data)
	require.NoError(t, err)
	assert.Equal(t, index.Base, decoded.Base)
	assert.Equal(t, index.Packs, decoded.Packs)
	assert.Equal(t, index.Entries, decoded.Entries)

	text, err := index.EncodeYAML()
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(text, &raw))
	assert.Equal(t, "main", raw["default"])
	assert.Len(t, raw["entries"], 4)
}

func TestDecodeIndexInvalid(t *testing.T) {
	_, err := DecodeIndex([]byte{0xff, 0x00})
	assert.Error(t, err)
}
