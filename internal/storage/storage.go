// Package storage is the directory snapshot the distributor works through.
// The filesystem is the only record of assignments: per-worker counts and the
// duplicate index are recomputed from directory scans on demand.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"holter-distributor/internal/domain"

	"github.com/spf13/afero"
)

// Store reads and mutates the inbound, output and rejected trees.
type Store struct {
	fs afero.Fs
}

// New wraps an afero filesystem. Production code passes afero.NewOsFs().
func New(fsys afero.Fs) *Store {
	return &Store{fs: fsys}
}

// NewOS returns a Store on the real filesystem.
func NewOS() *Store {
	return New(afero.NewOsFs())
}

// Fs exposes the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// ListItems returns the work items directly inside dir, one level deep.
// Subdirectories are never traversed.
func (s *Store) ListItems(dir string) ([]domain.WorkItem, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	items := make([]domain.WorkItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !domain.IsWorkItemName(e.Name()) {
			continue
		}
		items = append(items, domain.NewWorkItem(filepath.Join(dir, e.Name())))
	}
	return items, nil
}

// ItemNames returns the names of work items directly inside dir.
// A missing directory holds no items.
func (s *Store) ItemNames(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && domain.IsWorkItemName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// WalkItemNames returns the names of every work item anywhere under root.
// A root that does not exist yet is empty; any other read error is returned.
func (s *Store) WalkItemNames(root string) ([]string, error) {
	if _, err := s.fs.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	var names []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && domain.IsWorkItemName(info.Name()) {
			names = append(names, info.Name())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return names, nil
}

// Subdirs returns the sorted names of directories directly inside dir.
// A missing directory has none.
func (s *Store) Subdirs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Move relocates src into dstDir, creating dstDir on demand. It refuses to
// overwrite an existing file. A rename across devices falls back to copy and
// remove.
func (s *Store) Move(src, dstDir string) (string, error) {
	target := filepath.Join(dstDir, filepath.Base(src))

	if err := s.fs.MkdirAll(dstDir, 0o755); err != nil {
		return target, fmt.Errorf("failed to create %s: %w", dstDir, err)
	}

	exists, err := afero.Exists(s.fs, target)
	if err != nil {
		return target, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if exists {
		return target, fmt.Errorf("%s: %w", target, domain.ErrTargetExists)
	}

	err = s.fs.Rename(src, target)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return target, fmt.Errorf("failed to move %s: %w", src, err)
	}

	if err := s.copyFile(src, target); err != nil {
		_ = s.fs.Remove(target)
		return target, fmt.Errorf("failed to copy %s across devices: %w", src, err)
	}
	if err := s.fs.Remove(src); err != nil {
		return target, fmt.Errorf("copied %s but failed to remove source: %w", src, err)
	}
	return target, nil
}

func (s *Store) copyFile(src, dst string) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
