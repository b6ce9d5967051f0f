// Package file stores the service file as YAML on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/repo"
)

type Store struct {
	Path string
}

func New(path string) *Store { return &Store{Path: path} }

// Load reads, validates and normalizes the file.
func (s *Store) Load(ctx context.Context) (*config.File, error) {
	f, err := config.Load(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repo.ErrNoConfig
	}
	return f, err
}

// Save replaces the file atomically: the document is written to a temp file
// in the same directory and renamed over the old one.
func (s *Store) Save(ctx context.Context, f *config.File) error {
	b, err := config.Marshal(f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write service file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync service file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close service file: %w", err)
	}
	// the file holds bot credentials
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod service file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace service file: %w", err)
	}
	return nil
}

var _ repo.ConfigStore = (*Store)(nil)
