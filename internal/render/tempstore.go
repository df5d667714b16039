package render

import (
	"errors"
	"image"
	"image/png"
	"os"
)

// TempStore owns the temporary thumbnail files of one viewer. Every file
// created through it is removed by Purge.
type TempStore struct {
	dir     string
	pattern string
	paths   []string
}

// NewTempStore returns a store creating files in dir (os.TempDir when empty).
func NewTempStore(dir string) *TempStore {
	return &TempStore{dir: dir, pattern: "datviewer-*.png"}
}

// Create writes img as PNG into a fresh temp file and tracks its path.
func (s *TempStore) Create(img image.Image) (string, error) {
	f, err := os.CreateTemp(s.dir, s.pattern)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	s.paths = append(s.paths, path)
	return path, nil
}

// Paths returns a copy of the tracked file paths in creation order.
func (s *TempStore) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Len reports how many files are tracked.
func (s *TempStore) Len() int { return len(s.paths) }

// Detach forgets every tracked file without removing it and returns the
// paths. The caller owns them from then on.
func (s *TempStore) Detach() []string {
	paths := s.paths
	s.paths = nil
	return paths
}

// Purge removes every tracked file and forgets it. Files that are already
// gone are not an error.
func (s *TempStore) Purge() error {
	return RemoveFiles(s.Detach())
}

// RemoveFiles deletes paths, ignoring files that no longer exist.
func RemoveFiles(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
