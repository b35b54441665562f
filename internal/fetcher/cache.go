package fetcher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Cache stores fetched HTML on disk, one file per canonical URL.
// Entries persist indefinitely across runs; nothing invalidates them.
type Cache struct {
	// dir is the directory holding cache files.
	dir string
}

// NewCache creates a cache rooted at dir. The directory is created
// lazily on the first write.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Path returns the cache file path for a canonical URL. The name is the
// SHA-256 hex digest of the URL, so any URL maps to a safe filename.
func (c *Cache) Path(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".html")
}

// Get returns the cached HTML for a canonical URL, if present.
func (c *Cache) Get(canonicalURL string) (string, bool) {
	data, err := os.ReadFile(c.Path(canonicalURL)) //nolint:gosec // Path is derived from a hash
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put writes the decoded HTML for a canonical URL.
func (c *Cache) Put(canonicalURL, body string) error {
	if err := os.MkdirAll(c.dir, 0750); err != nil {
		return fmt.Errorf("create cache dir %s: %w", c.dir, err)
	}
	path := c.Path(canonicalURL)
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		return fmt.Errorf("write cache file %s: %w", path, err)
	}
	return nil
}
