// ABOUTME: Short-lived memoized selector query cache over the document
// ABOUTME: Entries expire after a TTL and are stale as soon as the document version moves

// Package domcache memoizes Select results so keystroke handlers do not
// rescan the whole document repeatedly.
package domcache

import (
	"time"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

// DefaultTTL is the lifetime of a cached query.
const DefaultTTL = 5 * time.Second

// Clock returns the current time. Tests inject a manual clock.
type Clock func() time.Time

type entry struct {
	nodes   []*document.Node
	version uint64
	at      time.Time
}

// Cache is owned by a single composer goroutine and is not safe for
// concurrent use.
type Cache struct {
	doc     *document.Document
	ttl     time.Duration
	now     Clock
	entries map[string]entry

	hits, misses int
}

// New returns a cache over doc. A non-positive ttl selects DefaultTTL; a
// nil clock selects time.Now.
func New(doc *document.Document, ttl time.Duration, now Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{doc: doc, ttl: ttl, now: now, entries: make(map[string]entry)}
}

// Query returns the nodes matching sel, from cache when the entry is fresh
// and the document has not changed since it was stored. The returned slice
// must not be modified.
func (c *Cache) Query(sel document.Selector) []*document.Node {
	key := sel.Key()
	now := c.now()
	if e, ok := c.entries[key]; ok {
		if e.version == c.doc.Version() && now.Sub(e.at) < c.ttl {
			c.hits++
			return e.nodes
		}
		delete(c.entries, key)
	}
	c.misses++
	nodes := c.doc.Select(sel)
	c.entries[key] = entry{nodes: nodes, version: c.doc.Version(), at: now}
	return nodes
}

// Clear drops every entry. Structural mutations call it before the next read.
func (c *Cache) Clear() {
	clear(c.entries)
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int { return len(c.entries) }

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }
