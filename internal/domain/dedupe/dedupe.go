// Package dedupe collapses repeated view keys inside a batch request.
package dedupe

import (
	types "github.com/fieldline/standee/internal/domain/types"
)

// Deduper records view keys and reports repeats. A deduper lives for a
// single batch request and is driven by the goroutine serving that
// request, so implementations are not required to be goroutine-safe.
type Deduper interface {
	// Seen reports whether key was already recorded and records it if not.
	// The first occurrence of a key returns false, every repeat true.
	Seen(key types.ViewKey) bool

	// Keys returns the distinct keys in first-seen order.
	Keys() []types.ViewKey

	// Len returns the number of distinct keys recorded.
	Len() int
}

// batchDeduper implements Deduper with a map for membership and a slice
// preserving first-seen order. Each view computes at most once per batch
// no matter how often its key repeats.
type batchDeduper struct {
	capacity int
	seen     map[types.ViewKey]struct{}
	order    []types.ViewKey
}

// NewBatchDeduper creates a deduper scoped to one batch request.
func NewBatchDeduper(opts ...Option) Deduper {
	d := &batchDeduper{}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	if d.capacity > 0 {
		d.seen = make(map[types.ViewKey]struct{}, d.capacity)
		d.order = make([]types.ViewKey, 0, d.capacity)
	} else {
		d.seen = make(map[types.ViewKey]struct{})
	}
	return d
}

// Seen reports whether key was already recorded and records it if not.
func (d *batchDeduper) Seen(key types.ViewKey) bool {
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return false
}

// Keys returns a copy of the distinct keys in first-seen order.
func (d *batchDeduper) Keys() []types.ViewKey {
	out := make([]types.ViewKey, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of distinct keys recorded.
func (d *batchDeduper) Len() int {
	return len(d.order)
}
