package student

import (
	"context"
	"sync"
)

// Cache holds resolved students keyed by RFID tag so repeat scans skip the
// store round trip. Implementations must tolerate concurrent use. Negative
// lookups are never cached.
type Cache interface {
	GetByTag(ctx context.Context, tag string) (*Student, bool)
	Upsert(ctx context.Context, s Student)
	Evict(ctx context.Context, tag string)
}

// MemoryCache is a mutex-guarded in-process cache, the default for a single
// kiosk binary.
type MemoryCache struct {
	mu    sync.RWMutex
	byTag map[string]Student
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{byTag: make(map[string]Student)}
}

// GetByTag returns the cached student for a tag, skipping soft-deleted entries.
func (c *MemoryCache) GetByTag(_ context.Context, tag string) (*Student, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byTag[tag]
	if !ok || !s.Active() {
		return nil, false
	}
	cp := s
	return &cp, true
}

// Upsert replaces any stale entry for the student's tag.
func (c *MemoryCache) Upsert(_ context.Context, s Student) {
	if s.RFIDTag == "" {
		return
	}
	c.mu.Lock()
	c.byTag[s.RFIDTag] = s
	c.mu.Unlock()
}

// Evict removes the entry for a tag.
func (c *MemoryCache) Evict(_ context.Context, tag string) {
	c.mu.Lock()
	delete(c.byTag, tag)
	c.mu.Unlock()
}
