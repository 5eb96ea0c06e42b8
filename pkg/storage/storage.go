// Package storage keeps product images on a configurable disk.
//
// STORAGE_DISK selects the driver at boot: "local" (default) writes under
// STORAGE_LOCAL_ROOT and serves from STORAGE_URL; "s3" targets an
// S3-compatible bucket (AWS, MinIO, R2). Before Connect runs every helper
// is inert, which keeps code paths that merely clean up after images safe
// in tests and CLI commands that never boot storage.
package storage

import (
	"fmt"
	"io"
	"sync"

	"github.com/changyuyeo/fitbody/config"
	"github.com/changyuyeo/fitbody/pkg/logger"
)

// Disk is what a storage driver must provide.
type Disk interface {
	PutStream(path string, r io.Reader) error
	Delete(path string) error
	URL(path string) string
}

var (
	mu     sync.RWMutex
	active Disk
)

// Connect selects and boots the configured disk. Call once at startup.
// An s3 disk that fails to initialise falls back to local so image
// uploads keep working.
func Connect() {
	d := buildDisk(config.Get("STORAGE_DISK", "local"))
	mu.Lock()
	active = d
	mu.Unlock()
}

func buildDisk(driver string) Disk {
	if driver == "s3" {
		d, err := newS3Disk()
		if err == nil {
			return d
		}
		logger.Warn("storage: s3 disk unavailable, using local", "error", err)
	}
	return newLocalDisk()
}

func disk() Disk {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// PutStream writes r to path on the active disk.
func PutStream(path string, r io.Reader) error {
	d := disk()
	if d == nil {
		return fmt.Errorf("storage: not connected")
	}
	return d.PutStream(path, r)
}

// Delete removes path from the active disk. No-op before Connect.
func Delete(path string) error {
	d := disk()
	if d == nil {
		return nil
	}
	return d.Delete(path)
}

// URL returns the public URL for path, or "" before Connect.
func URL(path string) string {
	d := disk()
	if d == nil {
		return ""
	}
	return d.URL(path)
}
