package guidepress

import (
	"sync"
	"time"
)

// GuideCache is an in-memory cache of published guides and tags with TTL.
type GuideCache struct {
	mu      sync.RWMutex
	guides  []Guide
	tags    []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewGuideCache creates a GuideCache backed by the given Store.
func NewGuideCache(s *Store, ttl time.Duration) *GuideCache {
	return &GuideCache{store: s, ttl: ttl}
}

func (c *GuideCache) valid() bool {
	return c.guides != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *GuideCache) Invalidate() {
	c.mu.Lock()
	c.guides = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *GuideCache) load() error {
	if c.valid() {
		return nil
	}
	guides, err := c.store.ListGuides("")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	if guides == nil {
		guides = []Guide{}
	}
	c.guides = guides
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached guides and tags after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *GuideCache) ensureLoaded() ([]Guide, []string, error) {
	c.mu.RLock()
	if c.valid() {
		guides, tags := c.guides, c.tags
		c.mu.RUnlock()
		return guides, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.guides, c.tags, nil
}

// ListGuides returns published guides, optionally filtered by tag.
func (c *GuideCache) ListGuides(tag string) ([]Guide, error) {
	guides, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return guides, nil
	}
	normalized := normalizeTag(tag)
	var filtered []Guide
	for _, g := range guides {
		for _, t := range g.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, g)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags from published guides.
func (c *GuideCache) ListTags() ([]string, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetGuide returns a single published guide by slug from the cache.
func (c *GuideCache) GetGuide(slug string) (Guide, error) {
	guides, _, err := c.ensureLoaded()
	if err != nil {
		return Guide{}, err
	}
	for _, g := range guides {
		if g.Slug == slug {
			return g, nil
		}
	}
	return Guide{}, ErrNotFound
}
