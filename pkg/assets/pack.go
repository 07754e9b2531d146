package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyPack = errors.New("empty pack name")

// ParsePack normalizes a raw directory entry or configured pack name into a
// pack name: backslashes become slashes, then one leading separator, a
// leading "?" marker (two characters) and one trailing separator are removed.
func ParsePack(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyPack
	}

	name := strings.ReplaceAll(raw, "\\", "/")
	name = strings.TrimPrefix(name, "/")

	if strings.HasPrefix(name, "?") {
		if len(name) < 2 {
			return "", ErrEmptyPack
		}
		name = name[2:]
	}

	name = strings.TrimSuffix(name, "/")
	if name == "" {
		return "", ErrEmptyPack
	}

	return name, nil
}

// NormalizePack is ParsePack for names that must be valid. It panics on an
// empty name.
func NormalizePack(raw string) string {
	name, err := ParsePack(raw)
	if err != nil {
		panic(err)
	}
	return name
}

// normalizeBase strips exactly one trailing separator. A filesystem root
// keeps its separator.
func normalizeBase(base string) string {
	volume := filepath.VolumeName(base)
	if len(base) == 1 || base == volume+"/" || base == volume+string(os.PathSeparator) {
		return base
	}

	if strings.HasSuffix(base, "/") {
		return base[:len(base)-1]
	}

	if os.PathSeparator != '/' && strings.HasSuffix(base, string(os.PathSeparator)) {
		return base[:len(base)-1]
	}

	return base
}
