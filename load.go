package xmcdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/internal/resource"
	"github.com/hupe1980/xmcdata/libsvm"
	"github.com/hupe1980/xmcdata/manifest"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/trim"
)

// Data is a filtered feature/label pair. Every row of X and Y holds at least
// one positive entry.
type Data struct {
	X *csr.Matrix
	Y *csr.Matrix
	// FeatureMask and LabelMask range over the source columns. They are nil
	// for caches written without masks.
	FeatureMask *trim.Mask
	LabelMask   *trim.Mask
	Manifest    *manifest.Manifest
	// FromCache reports whether parsing and trimming were skipped.
	FromCache bool
}

// Load returns the filtered pair of split stored under dir.
//
// An existing cache is returned as is unless WithForce is set. Otherwise the
// source text is parsed, trimmed and written back to the cache. A corrupt
// cache is treated like a missing one. Thresholds and masks only apply when
// the cache is rebuilt.
func Load(ctx context.Context, dir, split string, optFns ...Option) (*Data, error) {
	if split == "" {
		return nil, errors.New("xmcdata: empty split")
	}
	o := applyOptions(optFns)
	log := o.logger.WithSplit(split)
	o.logger = log

	store := o.store
	if store == nil {
		store = blobstore.NewLocalStore(dir)
	}
	source := o.source
	if source == "" {
		source = filepath.Join(dir, split+".txt")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !o.force {
		start := time.Now()
		p, err := loadCache(ctx, store, split, &o)
		switch {
		case err == nil:
			o.metricsCollector.RecordCacheLoad(true, time.Since(start), nil)
			log.LogCacheHit(ctx, p.X.Rows(), p.X.Cols(), p.Y.Cols(), time.Since(start))
			return &Data{
				X:           p.X,
				Y:           p.Y,
				FeatureMask: p.FeatureMask,
				LabelMask:   p.LabelMask,
				Manifest:    p.Manifest,
				FromCache:   true,
			}, nil
		case errors.Is(err, blobstore.ErrNotFound):
			o.metricsCollector.RecordCacheLoad(false, time.Since(start), nil)
			log.LogCacheMiss(ctx, nil)
		case errors.Is(err, persistence.ErrCacheCorrupt):
			o.metricsCollector.RecordCacheLoad(false, time.Since(start), err)
			log.LogCacheMiss(ctx, err)
		default:
			return nil, fmt.Errorf("xmcdata: load cache: %w", err)
		}
	}

	return build(ctx, store, split, source, &o)
}

func build(ctx context.Context, store blobstore.BlobStore, split, source string, o *options) (*Data, error) {
	log := o.logger

	start := time.Now()
	res, err := parseSource(ctx, source, o.ioLimiter)
	if err != nil {
		o.metricsCollector.RecordParse(0, time.Since(start), err)
		log.LogParse(ctx, source, 0, 0, err)
		return nil, fmt.Errorf("xmcdata: parse %s: %w", source, err)
	}
	o.metricsCollector.RecordParse(res.X.Rows(), time.Since(start), nil)
	log.LogParse(ctx, source, res.X.Rows(), res.Skipped, nil)

	start = time.Now()
	tr, err := trim.Pair(res.X, res.Y, trim.Params{
		MinWords:    o.minWords,
		MinLabels:   o.minLabels,
		FeatureMask: o.featureMask,
		LabelMask:   o.labelMask,
	})
	if err != nil {
		return nil, fmt.Errorf("xmcdata: trim: %w", err)
	}
	o.metricsCollector.RecordTrim(res.X.Rows(), tr.X.Rows(), time.Since(start))
	log.LogTrim(ctx, res.X.Rows(), tr.X.Rows(), tr.X.Cols(), tr.Y.Cols())

	p := &cachedPair{
		X:           tr.X,
		Y:           tr.Y,
		FeatureMask: tr.FeatureMask,
		LabelMask:   tr.LabelMask,
		Manifest: &manifest.Manifest{
			Split:         split,
			Rows:          tr.X.Rows(),
			FeatureCols:   tr.X.Cols(),
			LabelCols:     tr.Y.Cols(),
			FeatureNNZ:    tr.X.NNZ(),
			LabelNNZ:      tr.Y.NNZ(),
			SourceRows:    res.X.Rows(),
			MinWords:      o.minWords,
			MinLabels:     o.minLabels,
			ExplicitMasks: o.featureMask != nil || o.labelMask != nil,
			Compression:   o.compression.String(),
		},
	}

	start = time.Now()
	n, err := saveCache(ctx, store, split, p, o)
	o.metricsCollector.RecordCacheSave(n, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("xmcdata: save cache: %w", err)
	}

	return &Data{
		X:           p.X,
		Y:           p.Y,
		FeatureMask: p.FeatureMask,
		LabelMask:   p.LabelMask,
		Manifest:    p.Manifest,
	}, nil
}

// parseSource decodes the text at path, throttled by l when set.
func parseSource(ctx context.Context, path string, l persistence.IOLimiter) (*libsvm.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if l != nil {
		r = resource.NewRateLimitedReader(ctx, f, l)
	}
	return libsvm.NewDecoder(r).Decode(ctx)
}
