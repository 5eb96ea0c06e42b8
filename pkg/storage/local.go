package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/changyuyeo/fitbody/config"
)

// localDisk writes image files under a root directory and serves them
// through the /storage static prefix.
type localDisk struct {
	root string
	base string
}

func newLocalDisk() *localDisk {
	root := config.Get("STORAGE_LOCAL_ROOT", "storage")
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	base := strings.TrimRight(config.Get("STORAGE_URL", "http://localhost:8080/storage"), "/")
	return &localDisk{root: root, base: base}
}

func (d *localDisk) resolve(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

func (d *localDisk) PutStream(path string, r io.Reader) error {
	target := d.resolve(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir for %s: %w", path, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", path, err)
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("storage/local: write %s: %w", path, copyErr)
	}
	return closeErr
}

// Delete treats an already-absent file as success so repeated cleanup of
// the same product image is harmless.
func (d *localDisk) Delete(path string) error {
	if err := os.Remove(d.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *localDisk) URL(path string) string {
	return d.base + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}
