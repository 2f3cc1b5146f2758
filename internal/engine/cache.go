// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides the L1 in-memory cache of assembled markup. Versions
// are immutable, so an entry keyed by template and version never goes
// stale; the cache only needs a size bound.
package engine

import (
	"log/slog"
	"sync"

	"papermill/internal/models"
)

// maxMarkupEntries bounds the L1 cache. When full it is cleared wholesale.
const maxMarkupEntries = 1024

// cacheKey uniquely identifies a compiled template version. The template
// type is part of the key because the same content compiles differently
// (or not at all) under another type.
type cacheKey struct {
	template string
	typ      models.TemplateType
	id       string // version UUID as string
	version  int
}

// markupCache is a concurrency-safe in-memory cache of assembled markup.
type markupCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
	max     int
}

func newMarkupCache(max int) *markupCache {
	return &markupCache{
		entries: make(map[cacheKey]string),
		max:     max,
	}
}

// get retrieves assembled markup. ok is false on miss.
func (c *markupCache) get(key cacheKey) (markup string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	markup, ok = c.entries[key]
	return markup, ok
}

// put stores assembled markup, clearing the cache first when it is full.
func (c *markupCache) put(key cacheKey, markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.entries = make(map[cacheKey]string)
		slog.Debug("markup cache full, cleared", "max", c.max)
	}
	c.entries[key] = markup
	slog.Debug("markup cached", "id", key.id, "version", key.version, "size", len(c.entries))
}

// len reports the number of cached entries.
func (c *markupCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
