package catalog

import (
	"sync"
	"time"
)

// StockCache keeps the last catalog fetched from the backend together with
// stock decrements applied locally after a checkout. The patches are a
// display aid only; the backend record stays authoritative and every
// Replace discards them.
type StockCache struct {
	mu         sync.RWMutex
	products   []Product
	categories []Category
	sold       map[int64]int
	fetchedAt  time.Time
}

// NewStockCache constructs an empty cache.
func NewStockCache() *StockCache {
	return &StockCache{sold: make(map[int64]int)}
}

// Replace installs an authoritative snapshot and drops pending patches.
func (c *StockCache) Replace(products []Product, categories []Category, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append([]Product(nil), products...)
	c.categories = append([]Category(nil), categories...)
	c.sold = make(map[int64]int)
	c.fetchedAt = at
}

// Patch records quantities sold locally, keyed by product id.
func (c *StockCache) Patch(sold map[int64]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, qty := range sold {
		c.sold[id] += qty
	}
}

// Snapshot returns the cached catalog with local decrements applied.
func (c *StockCache) Snapshot() ([]Product, []Category, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products := make([]Product, len(c.products))
	for i, p := range c.products {
		p.Stock -= c.sold[p.ID]
		products[i] = p
	}
	categories := append([]Category(nil), c.categories...)
	return products, categories, c.fetchedAt
}

// Fresh reports whether a snapshot exists and is younger than maxAge.
func (c *StockCache) Fresh(now time.Time, maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < maxAge
}
