package history

import "github.com/hamed0406/statusmonitor/internal/domain"

// Cache holds the most recent result per target.
type Cache struct {
	m map[string]domain.ProbeResult
}

func NewCache() *Cache {
	return &Cache{m: make(map[string]domain.ProbeResult)}
}

func (c *Cache) Set(name string, r domain.ProbeResult) { c.m[name] = r }

func (c *Cache) Get(name string) (domain.ProbeResult, bool) {
	r, ok := c.m[name]
	return r, ok
}

// All returns a copy of the whole mapping.
func (c *Cache) All() map[string]domain.ProbeResult {
	out := make(map[string]domain.ProbeResult, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}
