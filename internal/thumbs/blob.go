package thumbs

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shoeboxapp/shoebox-client/internal/errors"
)

// BlobCache stores thumbnail bytes on the filesystem, keyed by the SHA-256
// of the source URL. Content type lives in a small sidecar file next to the
// blob. Safe for concurrent use.
type BlobCache struct {
	basePath string
	mu       sync.RWMutex
}

// NewBlobCache creates the cache directory if needed.
func NewBlobCache(basePath string) (*BlobCache, error) {
	if basePath == "" {
		return nil, errors.Validation("blob cache path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.LocalStoragef("create thumbnail directory: %v", err).WithCause(err)
	}
	return &BlobCache{basePath: basePath}, nil
}

// Save stores one thumbnail and its content type.
func (c *BlobCache) Save(url, contentType string, data []byte) error {
	if len(data) == 0 {
		return errors.Validation("thumbnail data cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	blob, sidecar := c.paths(url)
	if err := os.WriteFile(blob, data, 0644); err != nil {
		return errors.LocalStoragef("write thumbnail blob: %v", err).WithCause(err)
	}
	if err := os.WriteFile(sidecar, []byte(contentType), 0644); err != nil {
		return errors.LocalStoragef("write thumbnail sidecar: %v", err).WithCause(err)
	}
	return nil
}

// Get returns one thumbnail's bytes and content type. A miss is reported via
// the bool, not an error.
func (c *BlobCache) Get(url string) (data []byte, contentType string, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blob, sidecar := c.paths(url)
	data, err = os.ReadFile(blob)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", false, nil
		}
		return nil, "", false, errors.LocalStoragef("read thumbnail blob: %v", err).WithCause(err)
	}

	ct, err := os.ReadFile(sidecar)
	if err != nil && !os.IsNotExist(err) {
		return nil, "", false, errors.LocalStoragef("read thumbnail sidecar: %v", err).WithCause(err)
	}
	return data, strings.TrimSpace(string(ct)), true, nil
}

// Delete removes one thumbnail. Deleting a missing blob is not an error.
func (c *BlobCache) Delete(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	blob, sidecar := c.paths(url)
	if err := os.Remove(blob); err != nil && !os.IsNotExist(err) {
		return errors.LocalStoragef("delete thumbnail blob: %v", err).WithCause(err)
	}
	if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
		return errors.LocalStoragef("delete thumbnail sidecar: %v", err).WithCause(err)
	}
	return nil
}

func (c *BlobCache) paths(url string) (blob, sidecar string) {
	sum := fmt.Sprintf("%x", sha256.Sum256([]byte(url)))
	return filepath.Join(c.basePath, sum+".bin"), filepath.Join(c.basePath, sum+".ct")
}
