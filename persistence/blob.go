package persistence

import (
	"bytes"
	"context"

	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/csr"
)

// IOLimiter throttles blob transfers. *resource.Controller implements it.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// Save encodes m and stores it under name with a single atomic Put.
func Save(ctx context.Context, store blobstore.BlobStore, name string, m *csr.Matrix, optFns ...Option) (int64, error) {
	opts := applyOptions(optFns)

	var buf bytes.Buffer
	n, err := Write(&buf, m, optFns...)
	if err != nil {
		return 0, err
	}
	if opts.IO != nil {
		if err := opts.IO.AcquireIO(ctx, buf.Len()); err != nil {
			return 0, err
		}
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return 0, err
	}
	return n, nil
}

// Load reads and decodes the archive stored under name. Mappable blobs are
// decoded in place; others are read fully first.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*csr.Matrix, error) {
	opts := applyOptions(optFns)

	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if mb, ok := b.(blobstore.Mappable); ok {
		data, err := mb.Bytes()
		if err != nil {
			return nil, err
		}
		return Decode(data)
	}

	data, err := blobstore.ReadBlob(ctx, b)
	if err != nil {
		return nil, err
	}
	if opts.IO != nil {
		if err := opts.IO.AcquireIO(ctx, len(data)); err != nil {
			return nil, err
		}
	}
	return Decode(data)
}

// StatBlob reads the layout of the archive stored under name.
func StatBlob(ctx context.Context, store blobstore.BlobStore, name string) (*Info, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return Stat(data)
}
