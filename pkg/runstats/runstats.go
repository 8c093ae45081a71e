// SPDX-License-Identifier: MIT

// Package runstats turns the non-error outcomes the spec calls out —
// scanner skips, FilterReject and ExtractorWarning counters — into an
// explicit, concurrency-safe accumulator threaded through the scan
// pipeline, instead of global mutable state (spec §9). The trie builder
// records nothing here.
package runstats

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counters is a set of named, monotonically increasing counters safe for
// concurrent use by parallel extractor workers.
type Counters struct {
	mu     sync.Mutex
	values map[string]*atomic.Int64
}

// New returns an empty Counters set.
func New() *Counters {
	return &Counters{values: make(map[string]*atomic.Int64)}
}

// Inc increments the named counter by delta and returns its new value.
func (c *Counters) Inc(name string, delta int64) int64 {
	c.mu.Lock()
	v, ok := c.values[name]
	if !ok {
		v = &atomic.Int64{}
		c.values[name] = v
	}
	c.mu.Unlock()
	return v.Add(delta)
}

// Get returns the current value of the named counter (0 if never incremented).
func (c *Counters) Get(name string) int64 {
	c.mu.Lock()
	v, ok := c.values[name]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	return v.Load()
}

// Snapshot returns a stable copy of all counters, for logging or for
// exposing over pkg/metrics. The map is unordered; Names gives the
// sorted order.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.values))
	for k, v := range c.values {
		out[k] = v.Load()
	}
	return out
}

// Names returns the sorted counter names currently registered.
func (c *Counters) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
