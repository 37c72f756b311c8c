package permissions

import (
	"strconv"
	"sync"
)

// permissionCache holds resolved permission sets keyed by user and
// company. It is a performance layer, not a consistency boundary:
// lookups hit or miss, they never fail, and concurrent misses for the
// same key are allowed to race (last write wins).
type permissionCache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

func newPermissionCache() *permissionCache {
	return &permissionCache{
		entries: make(map[string][]string),
	}
}

func cacheKey(userID, companyID int64) string {
	return strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(companyID, 10)
}

func (c *permissionCache) get(userID, companyID int64) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	perms, ok := c.entries[cacheKey(userID, companyID)]
	return perms, ok
}

func (c *permissionCache) set(userID, companyID int64, perms []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(userID, companyID)] = perms
}

func (c *permissionCache) invalidate(userID, companyID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, cacheKey(userID, companyID))
}

func (c *permissionCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]string)
}
