package xmcdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/manifest"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/trim"
	"golang.org/x/sync/errgroup"
)

// CacheNames returns the blob names used for the cache of split.
func CacheNames(split string) (x, y, masks string) {
	return fmt.Sprintf("X_%s.xmc", split), fmt.Sprintf("Y_%s.xmc", split), fmt.Sprintf("masks_%s.roar", split)
}

type cachedPair struct {
	X, Y        *csr.Matrix
	FeatureMask *trim.Mask
	LabelMask   *trim.Mask
	Manifest    *manifest.Manifest
}

// loadCache reads a cached split. A split without X or Y yields
// blobstore.ErrNotFound; masks and manifest are optional.
func loadCache(ctx context.Context, store blobstore.BlobStore, split string, o *options) (*cachedPair, error) {
	xName, yName, maskName := CacheNames(split)
	popts := []persistence.Option{persistence.WithIOLimiter(o.ioLimiter)}

	var p cachedPair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := persistence.Load(gctx, store, xName, popts...)
		p.X = m
		return err
	})
	g.Go(func() error {
		m, err := persistence.Load(gctx, store, yName, popts...)
		p.Y = m
		return err
	})
	g.Go(func() error {
		data, err := blobstore.ReadAll(gctx, store, maskName)
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		p.FeatureMask, p.LabelMask, err = trim.UnmarshalMasks(data)
		return err
	})
	g.Go(func() error {
		m, err := manifest.NewStore(store, o.codec).Load(gctx, split)
		if err != nil {
			// the manifest is informational
			return nil
		}
		p.Manifest = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.X.Rows() != p.Y.Rows() {
		return nil, &persistence.CacheCorruptError{
			Field:  "matrix",
			Reason: fmt.Sprintf("X has %d rows, Y has %d", p.X.Rows(), p.Y.Rows()),
			Err:    csr.ErrShapeMismatch,
		}
	}
	if p.FeatureMask != nil && p.FeatureMask.Count() != p.X.Cols() ||
		p.LabelMask != nil && p.LabelMask.Count() != p.Y.Cols() {
		return nil, &persistence.CacheCorruptError{Field: "mask", Reason: "mask does not match cached columns"}
	}
	return &p, nil
}

// saveCache writes a filtered split. Matrices are written first and the
// manifest last, so a manifest implies a complete cache.
func saveCache(ctx context.Context, store blobstore.BlobStore, split string, p *cachedPair, o *options) (int64, error) {
	xName, yName, maskName := CacheNames(split)
	popts := []persistence.Option{
		persistence.WithCompression(o.compression),
		persistence.WithIOLimiter(o.ioLimiter),
	}

	var xBytes, yBytes int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := persistence.Save(gctx, store, xName, p.X, popts...)
		o.logger.LogSave(gctx, xName, n, err)
		xBytes = n
		return err
	})
	g.Go(func() error {
		n, err := persistence.Save(gctx, store, yName, p.Y, popts...)
		o.logger.LogSave(gctx, yName, n, err)
		yBytes = n
		return err
	})
	g.Go(func() error {
		data, err := trim.MarshalMasks(p.FeatureMask, p.LabelMask)
		if err != nil {
			return err
		}
		err = store.Put(gctx, maskName, data)
		o.logger.LogSave(gctx, maskName, int64(len(data)), err)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := manifest.NewStore(store, o.codec).Save(ctx, p.Manifest); err != nil {
		return 0, err
	}
	return xBytes + yBytes, nil
}
