// Package dedupe defines the interface for idempotency tracking.
package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithInitialCapacity sets the sizing hint for the seen-ID map. It is a
// capacity hint only; the set itself never evicts.
func WithInitialCapacity(capacity int) Option {
	return func(d *inMemoryDeduper) {
		if capacity > 0 {
			d.initialCapacity = capacity
		}
	}
}
