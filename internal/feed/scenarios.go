package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rvoss/swarmview/internal/swarmd"
)

const maxBackoff = 30 * time.Second

// calculateBackoff doubles the retry delay per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// Catalog caches the scenario listing for the selection UI. Refreshes that
// fail back off exponentially so a down server is not hammered every time
// the picker opens.
type Catalog struct {
	client   swarmd.StateFetcher
	base     time.Duration
	now      func() time.Time
	mu       sync.Mutex
	cached   []swarmd.Scenario
	lastErr  error
	failures int
	nextTry  time.Time
}

// NewCatalog builds a Catalog reading through client.
func NewCatalog(client swarmd.StateFetcher, retryBase time.Duration) *Catalog {
	if retryBase <= 0 {
		retryBase = 2 * time.Second
	}
	return &Catalog{client: client, base: retryBase, now: time.Now}
}

// Refresh fetches the scenario listing, or returns the cached copy when a
// recent failure is still backing off.
func (c *Catalog) Refresh(ctx context.Context, query swarmd.ScenarioQuery) ([]swarmd.Scenario, error) {
	c.mu.Lock()
	if c.failures > 0 && c.now().Before(c.nextTry) {
		cached, err := c.cachedLocked()
		c.mu.Unlock()
		return cached, err
	}
	c.mu.Unlock()

	scenarios, err := c.client.ListScenarios(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures++
		c.lastErr = err
		c.nextTry = c.now().Add(calculateBackoff(c.failures, c.base))
		return c.cachedLocked()
	}
	c.cached = scenarios
	c.lastErr = nil
	c.failures = 0
	return c.cachedLocked()
}

// Scenarios returns the cached listing without touching the network.
func (c *Catalog) Scenarios() []swarmd.Scenario {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, _ := c.cachedLocked()
	return cached
}

func (c *Catalog) cachedLocked() ([]swarmd.Scenario, error) {
	if len(c.cached) == 0 {
		return nil, c.lastErr
	}
	dup := make([]swarmd.Scenario, len(c.cached))
	copy(dup, c.cached)
	return dup, c.lastErr
}
