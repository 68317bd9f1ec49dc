package resolve

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"revlens/internal/hosting"
)

// Coalescer guarantees at most one in-flight provider call per
// providerID:commitID key. Callers arriving while a flight is active share
// its result instead of issuing their own. The in-flight set is tracked
// separately from the flight itself so the engine can report a "loading"
// outcome without joining.
type Coalescer struct {
	group    singleflight.Group
	mu       sync.Mutex
	inflight map[string]int
}

// NewCoalescer creates an empty coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{inflight: make(map[string]int)}
}

// InFlight reports whether a resolution for the key is currently active.
func (c *Coalescer) InFlight(providerID, commitID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[cacheKey(providerID, commitID)] > 0
}

// Do executes fn for the key, or joins an already-running execution.
// The key is released unconditionally once the call settles; a failure
// that left the key registered would block that commit forever.
func (c *Coalescer) Do(providerID, commitID string, fn func() (*hosting.ChangeRequest, error)) (*hosting.ChangeRequest, error) {
	key := cacheKey(providerID, commitID)

	c.mu.Lock()
	c.inflight[key]++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inflight[key]--; c.inflight[key] <= 0 {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	cr, _ := v.(*hosting.ChangeRequest)
	return cr, nil
}
