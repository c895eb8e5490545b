// Package cache provides an optional in-memory TTL cache for provider
// responses. It exists purely to absorb terminal poll bursts; with a zero
// TTL the connector keeps no state between requests.
package cache

import (
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vianexus/terminal-connector/internal/upstream"
	"github.com/vianexus/terminal-connector/pkg/metrics"
)

// maxEntries bounds the cache so a misbehaving terminal cannot grow it
// without limit.
const maxEntries = 1024

// ResponseCache stores provider record sets keyed by the canonical request.
// A nil *ResponseCache is a valid disabled cache; every lookup misses.
type ResponseCache struct {
	store *expirable.LRU[string, []upstream.Record]
}

// New builds a cache with the given TTL, or nil when ttl is zero or
// negative so callers can treat "disabled" and "absent" the same way.
func New(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return nil
	}
	return &ResponseCache{
		store: expirable.NewLRU[string, []upstream.Record](maxEntries, nil, ttl),
	}
}

// Get returns the cached records for a request, if present and unexpired.
func (c *ResponseCache) Get(req upstream.Request) ([]upstream.Record, bool) {
	if c == nil {
		return nil, false
	}
	records, ok := c.store.Get(Key(req))
	if ok {
		metrics.CacheHits.Inc()
	} else {
		metrics.CacheMisses.Inc()
	}
	return records, ok
}

// Put stores the records for a request.
func (c *ResponseCache) Put(req upstream.Request, records []upstream.Record) {
	if c == nil {
		return
	}
	c.store.Add(Key(req), records)
}

// Key renders the canonical cache key for a request. Query parameters are
// sorted so equivalent requests collide regardless of map iteration order.
func Key(req upstream.Request) string {
	var sb strings.Builder
	sb.WriteString(req.Namespace)
	sb.WriteByte('/')
	sb.WriteString(req.Dataset)
	sb.WriteByte('/')
	sb.WriteString(strings.Join(req.Symbols, ","))

	keys := make([]string, 0, len(req.Query))
	for k := range req.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte('?')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(req.Query[k], ","))
	}
	return sb.String()
}
