package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of IDs to keep in memory.
// If maxSize > 0 the oldest ID is evicted once the limit is reached;
// otherwise the deduper is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
