package loader

import "runtime"

type options struct {
	batchSize   int
	workers     int
	dropLast    bool
	seed        uint64
	prefetch    int
	memoryLimit int64
}

// Option configures a Loader.
type Option func(*options)

// WithBatchSize sets the number of examples per batch. Default 32.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithWorkers sets the number of concurrent collation workers.
// Default runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithDropLast drops a trailing batch smaller than the batch size.
func WithDropLast(drop bool) Option {
	return func(o *options) {
		o.dropLast = drop
	}
}

// WithSeed seeds the per-batch random sources used for subsampling and
// label sampling.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithPrefetch bounds how many batches may be collated ahead of the consumer.
// Default twice the number of workers.
func WithPrefetch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.prefetch = n
		}
	}
}

// WithMemoryLimit bounds the estimated bytes held by batches that were
// scheduled but not yet consumed. 0 disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = max(bytes, 0)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		batchSize: 32,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.prefetch == 0 {
		o.prefetch = 2 * o.workers
	}
	return o
}
