package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrInvalidPath is returned for names that escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// LocalStorage keeps generated archives under a base directory of an afero
// filesystem. All names are slash-separated and relative to that directory.
type LocalStorage struct {
	fs  afero.Fs
	now func() time.Time
}

// NewLocalStorage stores files on the OS filesystem under baseDir.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	return NewStorage(afero.NewOsFs(), baseDir)
}

// NewStorage ensures baseDir exists on fs and returns a handle rooted there.
func NewStorage(fs afero.Fs, baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./archives"
	}
	if err := fs.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &LocalStorage{fs: afero.NewBasePathFs(fs, baseDir), now: time.Now}, nil
}

// Save writes data under name, creating parent directories.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	p, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("prepare archive directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return strings.TrimPrefix(p, "/"), nil
}

// Read returns the stored bytes. os.ErrNotExist is preserved for callers.
func (s *LocalStorage) Read(name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("read archive file: %w", err)
	}
	return data, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(name string) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete archive file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes files last modified more than ttl ago and returns
// their names.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := s.now().Add(-ttl)
	var stale []string
	err := afero.Walk(s.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.ModTime().After(cutoff) {
			return nil
		}
		stale = append(stale, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan archives: %w", err)
	}

	deleted := make([]string, 0, len(stale))
	for _, p := range stale {
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return deleted, fmt.Errorf("cleanup archives: %w", err)
		}
		deleted = append(deleted, strings.TrimPrefix(p, "/"))
	}
	return deleted, nil
}

func (s *LocalStorage) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return path.Clean("/" + name), nil
}
