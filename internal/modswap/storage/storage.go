// Package storage performs the file operations modswap relies on: atomic
// writes for its own records and non-overwriting moves for payload files.
// Symlinks are never followed for either.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const recordPerm os.FileMode = 0o644

// ErrSymlink is returned when an operation would go through a symlink.
var ErrSymlink = errors.New("refusing to operate on symlink")

// Storage wraps an afero filesystem.
type Storage struct {
	fs afero.Fs
}

// New returns a Storage over fs.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// RefuseSymlink fails when path is a symlink. A missing path is fine, and
// filesystems without Lstat support are trusted.
func (s *Storage) RefuseSymlink(path string) error {
	lstater, ok := s.fs.(afero.Lstater)
	if !ok {
		return nil
	}
	info, _, err := lstater.LstatIfPossible(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("lstat %s: %w", path, err)
	case info.Mode()&os.ModeSymlink != 0:
		return fmt.Errorf("%w: %s", ErrSymlink, path)
	}
	return nil
}

// WriteFileAtomic replaces path with data through a temp file in the same
// directory followed by a rename.
func (s *Storage) WriteFileAtomic(path string, data []byte) error {
	if err := s.RefuseSymlink(path); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = s.fs.Remove(name)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := s.fs.Chmod(name, recordPerm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := s.fs.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// Move renames src to dst. An existing dst is never replaced; the error then
// wraps os.ErrExist.
func (s *Storage) Move(src, dst string) error {
	for _, p := range []string{src, dst} {
		if err := s.RefuseSymlink(p); err != nil {
			return err
		}
	}

	taken, err := s.Exists(dst)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", dst, err)
	}
	if taken {
		return fmt.Errorf("move to %s: %w", dst, os.ErrExist)
	}
	if err := s.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}

// IsDir reports whether path is a directory and not a symlink to one.
func (s *Storage) IsDir(path string) (bool, error) {
	if err := s.RefuseSymlink(path); err != nil {
		return false, err
	}
	info, err := s.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ReadFile reads the whole file at path.
func (s *Storage) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// Exists reports whether path exists.
func (s *Storage) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// ReadDir lists path sorted by name.
func (s *Storage) ReadDir(path string) ([]os.FileInfo, error) {
	return afero.ReadDir(s.fs, path)
}

// Remove deletes the file at path.
func (s *Storage) Remove(path string) error {
	return s.fs.Remove(path)
}
