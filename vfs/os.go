package vfs

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// OS is a FileSystem backed by the real, local disk, rooted at Root (which
// may be "" to operate on absolute paths directly): the on-disk counterpart
// to Memory. The registry's archive download path does not go through it;
// it creates and removes destination directories with package os directly.
type OS struct {
	Root string
}

func (o OS) resolve(path string) string {
	if o.Root == "" {
		return path
	}
	return filepath.Join(o.Root, path)
}

// ReadFile implements FileSystem.
func (o OS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(o.resolve(path))
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	return data, err
}

// WriteFile implements FileSystem, creating parent directories as needed.
func (o OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	full := o.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(err, "vfs: creating parent directory for %s", path)
	}
	return os.WriteFile(full, data, perm)
}

// Exists implements FileSystem.
func (o OS) Exists(path string) (bool, error) {
	_, err := os.Stat(o.resolve(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsFile implements FileSystem.
func (o OS) IsFile(path string) (bool, error) {
	info, err := os.Stat(o.resolve(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// IsDir implements FileSystem.
func (o OS) IsDir(path string) (bool, error) {
	info, err := os.Stat(o.resolve(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ReadDir implements FileSystem, returning direct-child base names in
// lexical order.
func (o OS) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(o.resolve(path))
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MkdirAll implements FileSystem.
func (o OS) MkdirAll(path string) error {
	return os.MkdirAll(o.resolve(path), 0o755)
}

// RemoveAll implements FileSystem.
func (o OS) RemoveAll(path string) error {
	return os.RemoveAll(o.resolve(path))
}
