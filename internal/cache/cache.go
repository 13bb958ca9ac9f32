package cache

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/teamcutter/fetchr/internal/domain"
)

// DiskCache decides whether a download is already materialized under dir,
// either as the raw file or in its extracted form.
type DiskCache struct {
	// guards Size against a concurrent Clear
	sync.RWMutex
	dir       string
	enabled   bool
	extractor domain.Extractor
}

var _ domain.Cache = (*DiskCache)(nil)

// New returns a cache over dir. The extractor may be nil, in which case only
// raw files count as cached.
func New(dir string, enabled bool, extractor domain.Extractor) *DiskCache {
	return &DiskCache{
		dir:       dir,
		enabled:   enabled,
		extractor: extractor,
	}
}

func (c *DiskCache) Dir() string {
	return c.dir
}

// IsCached reports whether dst exists, or whether dst is an archive whose
// extracted form exists. It is always false when caching is disabled.
func (c *DiskCache) IsCached(dst string) bool {
	if !c.enabled {
		return false
	}

	if _, err := os.Stat(dst); err == nil {
		return true
	}
	if c.extractor == nil {
		return false
	}

	extracted := c.extractor.DestinationPath(dst)
	return extracted != "" && c.extractor.IsCached(extracted)
}

// Size returns the total size of the files under the cache directory.
func (c *DiskCache) Size() (int64, error) {
	c.RLock()
	defer c.RUnlock()

	var size int64

	err := filepath.Walk(c.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}

	return size, err
}

func (c *DiskCache) Clear() error {
	c.Lock()
	defer c.Unlock()

	return os.RemoveAll(c.dir)
}
