package xmcdata

import (
	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/libsvm"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/preprocess"
)

var (
	// ErrFormat matches malformed headers and lines in source text.
	ErrFormat = libsvm.ErrFormat
	// ErrCacheCorrupt matches missing or inconsistent cache fields. Load
	// recovers from it by re-parsing the source.
	ErrCacheCorrupt = persistence.ErrCacheCorrupt
	// ErrEmptyExample matches an example without features or labels reaching
	// a transform.
	ErrEmptyExample = preprocess.ErrEmptyExample
	// ErrShapeMismatch matches disagreeing row counts and mask lengths.
	ErrShapeMismatch = csr.ErrShapeMismatch
	// ErrNotFound matches missing source files and cache blobs.
	ErrNotFound = blobstore.ErrNotFound
)

type (
	// FormatError carries the line number of a parse failure.
	FormatError = libsvm.FormatError
	// CacheCorruptError names the cache field that failed validation.
	CacheCorruptError = persistence.CacheCorruptError
)
