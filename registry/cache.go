package registry

import (
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// cache holds one Client per base URL for the lifetime of the process, so
// repeated lookups against the same registry reuse connections instead of
// building a fresh *http.Client each time.
var cache = struct {
	mu sync.Mutex
	m  *treemap.Map
}{m: treemap.NewWith(utils.StringComparator)}

// CachedClient returns the process-wide Client for baseURL, constructing and
// caching one on first use. doer is only consulted the first time baseURL is
// seen; subsequent calls return the already-cached Client regardless of the
// doer argument, matching a shared long-lived connection pool.
func CachedClient(baseURL string, doer HTTPDoer) (*Client, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if v, found := cache.m.Get(baseURL); found {
		return v.(*Client), nil
	}
	c, err := New(baseURL, doer)
	if err != nil {
		return nil, err
	}
	cache.m.Put(baseURL, c)
	return c, nil
}

// ResetCache discards every cached Client. Intended for tests that need a
// clean slate between httptest servers bound to reused base URLs.
func ResetCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.m.Clear()
}
