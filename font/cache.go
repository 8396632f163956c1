package font

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tsawler/plumb/backend"
)

// Cache memoizes resolved fonts by indirect object number, so a font
// shared across pages is folded down once even when pages are processed
// concurrently. Fonts without an object number (inline dictionaries)
// bypass the cache.
type Cache struct {
	mu    sync.RWMutex
	fonts map[int]*ResolvedFont
	group singleflight.Group
}

func NewCache() *Cache {
	return &Cache{fonts: make(map[int]*ResolvedFont)}
}

// Resolve returns the ResolvedFont for f, folding it down on first use.
func (c *Cache) Resolve(f *backend.Font) *ResolvedFont {
	if f.Ref == 0 {
		return Resolve(f)
	}

	c.mu.RLock()
	rf, ok := c.fonts[f.Ref]
	c.mu.RUnlock()
	if ok {
		return rf
	}

	v, _, _ := c.group.Do(strconv.Itoa(f.Ref), func() (any, error) {
		rf := Resolve(f)
		c.mu.Lock()
		c.fonts[f.Ref] = rf
		c.mu.Unlock()
		return rf, nil
	})
	return v.(*ResolvedFont)
}
