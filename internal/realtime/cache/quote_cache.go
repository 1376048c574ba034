package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// Fetcher looks up live quotes from the provider
type Fetcher interface {
	Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error)
}

type entry struct {
	quote     contracts.Quote
	fetchedAt time.Time
}

// QuoteCache is an in-memory read-through cache for live quotes.
// Concurrent websocket streams share one provider request per TTL.
// ⭐ SSOT: 실시간 시세 캐싱은 이 구조체에서만
type QuoteCache struct {
	mu      sync.RWMutex
	quotes  map[string]entry
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *logger.Logger

	// 동시 miss 시 provider 요청 1회로 합침
	fetchMu sync.Mutex
}

// NewQuoteCache creates a new quote cache
func NewQuoteCache(fetcher Fetcher, ttl time.Duration, log *logger.Logger) *QuoteCache {
	return &QuoteCache{
		quotes:  make(map[string]entry),
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  log.Module("quote_cache"),
	}
}

// Quotes returns fresh quotes for symbols, fetching only missing or stale ones.
// A fetch failure is only reported when no fresh quote is available.
func (c *QuoteCache) Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	result, missing := c.lookup(symbols)
	if len(missing) == 0 {
		return result, nil
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	// 대기 중 다른 요청이 채웠을 수 있음
	result, missing = c.lookup(symbols)
	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := c.fetcher.Quotes(ctx, missing)
	if err != nil {
		if len(result) > 0 {
			return result, nil
		}
		return nil, err
	}

	c.CleanStale()

	now := c.now()
	c.mu.Lock()
	for symbol, q := range fetched {
		c.quotes[symbol] = entry{quote: q, fetchedAt: now}
		result[symbol] = q
	}
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"requested": len(missing),
		"fetched":   len(fetched),
	}).Debug("Quote cache refilled")

	return result, nil
}

// lookup splits symbols into fresh hits and misses
func (c *QuoteCache) lookup(symbols []string) (map[string]contracts.Quote, []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	result := make(map[string]contracts.Quote, len(symbols))
	missing := make([]string, 0)
	for _, s := range symbols {
		e, ok := c.quotes[s]
		if ok && now.Sub(e.fetchedAt) <= c.ttl {
			result[s] = e.quote
			continue
		}
		missing = append(missing, s)
	}
	return result, missing
}

// Get retrieves a quote and whether it is still fresh
func (c *QuoteCache) Get(symbol string) (contracts.Quote, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.quotes[symbol]
	if !exists {
		return contracts.Quote{}, false, false
	}
	return e.quote, true, c.now().Sub(e.fetchedAt) <= c.ttl
}

// Len returns the number of quotes in cache
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.quotes)
}

// CleanStale removes stale quotes from cache
func (c *QuoteCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0

	for symbol, e := range c.quotes {
		if now.Sub(e.fetchedAt) > c.ttl {
			delete(c.quotes, symbol)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Debug("Cleaned stale quotes from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *QuoteCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		TotalCount: len(c.quotes),
	}

	now := c.now()
	for _, e := range c.quotes {
		if now.Sub(e.fetchedAt) > c.ttl {
			stats.StaleCount++
		}
	}

	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int `json:"total_count"`
	FreshCount int `json:"fresh_count"`
	StaleCount int `json:"stale_count"`
}
