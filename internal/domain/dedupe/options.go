// Package dedupe collapses repeated view keys inside a batch request.
package dedupe

// Option applies a configuration option to the batch deduper.
type Option func(*batchDeduper)

// WithCapacity presizes the deduper for an expected number of views.
// Values of zero or less keep the default sizing.
func WithCapacity(n int) Option {
	return func(d *batchDeduper) {
		if n > 0 {
			d.capacity = n
		}
	}
}
