package marketdata

import (
	"sync"
	"time"
)

// pricePoint is one observed live price.
type pricePoint struct {
	price float64
	at    time.Time
}

// PriceCache holds the latest observed price per ticker, fed by the
// stream and read by the live-price provider.
// ⭐ SSOT: 실시간 가격은 여기서만 읽음
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]pricePoint
	maxAge time.Duration
}

// NewPriceCache creates a cache; prices older than maxAge are treated
// as absent (a stalled stream must not masquerade as live data).
func NewPriceCache(maxAge time.Duration) *PriceCache {
	return &PriceCache{
		prices: make(map[string]pricePoint),
		maxAge: maxAge,
	}
}

// Set records a price observation.
func (c *PriceCache) Set(ticker string, price float64) {
	if price <= 0 {
		return
	}
	c.mu.Lock()
	c.prices[ticker] = pricePoint{price: price, at: time.Now()}
	c.mu.Unlock()
}

// Get returns the latest fresh price for a ticker.
func (c *PriceCache) Get(ticker string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[ticker]
	if !ok || time.Since(p.at) > c.maxAge {
		return 0, false
	}
	return p.price, true
}

// CleanStale removes entries older than maxAge and reports how many
// were dropped.
func (c *PriceCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for ticker, p := range c.prices {
		if time.Since(p.at) > c.maxAge {
			delete(c.prices, ticker)
			removed++
		}
	}
	return removed
}

// Len reports how many tickers currently have a fresh price.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, p := range c.prices {
		if time.Since(p.at) <= c.maxAge {
			n++
		}
	}
	return n
}
