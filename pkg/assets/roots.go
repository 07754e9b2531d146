package assets

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Root is the filesystem the resolver searches. Paths are absolute.
type Root interface {
	// Entries returns the names of the directories directly under dir in
	// enumeration order.
	Entries(dir string) ([]string, error)
	Exists(path string) bool
	// Walk returns every regular file below dir as a slash-separated path
	// relative to dir.
	Walk(dir string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// An OSRoot is the local filesystem.
type OSRoot struct{}

func (OSRoot) Entries(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// os.ReadDir sorts by name; File.ReadDir keeps the directory order
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return names, nil
}

func (OSRoot) Exists(path string) bool {
	return FileExists(path)
}

func (OSRoot) Walk(dir string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (OSRoot) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSRoot) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

var _ Root = OSRoot{}
