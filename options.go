package xmcdata

import (
	"log/slog"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/codec"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/trim"
)

type options struct {
	force            bool
	minWords         int
	minLabels        int
	featureMask      *trim.Mask
	labelMask        *trim.Mask
	source           string
	store            blobstore.BlobStore
	compression      persistence.Compression
	ioLimiter        persistence.IOLimiter
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Load.
type Option func(*options)

// WithForce ignores an existing cache and rebuilds it from the source text.
func WithForce(force bool) Option {
	return func(o *options) {
		o.force = force
	}
}

// WithMinWords drops feature columns with a positive entry in fewer than n
// rows. The default of 1 drops columns that never occur; 0 keeps every
// column. Ignored when WithMasks supplies a feature mask.
func WithMinWords(n int) Option {
	return func(o *options) {
		o.minWords = n
	}
}

// WithMinLabels drops label columns with a positive entry in fewer than n
// rows. The default of 1 drops labels that never occur; 0 keeps every
// label. Ignored when WithMasks supplies a label mask.
func WithMinLabels(n int) Option {
	return func(o *options) {
		o.minLabels = n
	}
}

// WithMasks applies precomputed column masks, typically the ones returned
// for a training split, instead of computing them from thresholds.
// A nil mask falls back to its threshold.
func WithMasks(features, labels *trim.Mask) Option {
	return func(o *options) {
		o.featureMask = features
		o.labelMask = labels
	}
}

// WithSource overrides the source text path. The default is
// {dir}/{split}.txt.
func WithSource(path string) Option {
	return func(o *options) {
		o.source = path
	}
}

// WithStore selects where cache files live. The default is a
// blobstore.LocalStore rooted at the dataset directory.
//
// Example with S3:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("eurlex/"))
//	data, _ := xmcdata.Load(ctx, dir, "train", xmcdata.WithStore(store))
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCompression selects the compression of newly written caches.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithIOLimiter throttles cache transfers.
func WithIOLimiter(l persistence.IOLimiter) Option {
	return func(o *options) {
		o.ioLimiter = l
	}
}

// WithCodec configures the codec used for the manifest sidecar.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &xmcdata.BasicMetricsCollector{}
//	data, _ := xmcdata.Load(ctx, dir, "train", xmcdata.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Cache hits: %d, rows parsed: %d\n", stats.CacheHits, stats.ParsedRows)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := xmcdata.NewJSONLogger(slog.LevelInfo)
//	data, _ := xmcdata.Load(ctx, dir, "train", xmcdata.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		minWords:         1,
		minLabels:        1,
		compression:      persistence.CompressionLZ4,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
