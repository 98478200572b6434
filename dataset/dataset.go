// Package dataset pairs a feature and a label matrix for indexed access.
package dataset

import (
	"cmp"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/hupe1980/xmcdata/csr"
)

// Sample is one materialized row. Slices are copies owned by the caller.
type Sample struct {
	Indices []uint32
	Weights []float32
	Labels  []uint32
}

// Dataset is a read-only view over an (X, Y) pair. Get is safe for concurrent
// use, also while Sort or Randomize switch the ordering.
type Dataset struct {
	x, y *csr.Matrix
	perm atomic.Pointer[[]int]
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithSorted orders rows by ascending feature count at construction.
func WithSorted() Option {
	return func(d *Dataset) { d.Sort() }
}

// New pairs X and Y. It fails with csr.ErrShapeMismatch when their row counts
// differ.
func New(X, Y *csr.Matrix, optFns ...Option) (*Dataset, error) {
	if X.Rows() != Y.Rows() {
		return nil, fmt.Errorf("%w: X has %d rows, Y has %d", csr.ErrShapeMismatch, X.Rows(), Y.Rows())
	}
	d := &Dataset{x: X, y: Y}
	for _, fn := range optFns {
		fn(d)
	}
	return d, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.x.Rows() }

// X returns the feature matrix.
func (d *Dataset) X() *csr.Matrix { return d.x }

// Y returns the label matrix.
func (d *Dataset) Y() *csr.Matrix { return d.y }

// Features returns the number of feature columns.
func (d *Dataset) Features() int { return d.x.Cols() }

// Labels returns the number of label columns.
func (d *Dataset) Labels() int { return d.y.Cols() }

// Sort orders rows by ascending number of stored features. Rows of equal
// length keep their natural order.
func (d *Dataset) Sort() {
	perm := make([]int, d.x.Rows())
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return cmp.Compare(d.x.RowLen(a), d.x.RowLen(b))
	})
	d.perm.Store(&perm)
}

// Randomize reverts to natural row order.
func (d *Dataset) Randomize() { d.perm.Store(nil) }

// Sorted reports whether a length ordering is active.
func (d *Dataset) Sorted() bool { return d.perm.Load() != nil }

// Row maps a position to the underlying row.
func (d *Dataset) Row(i int) int {
	if p := d.perm.Load(); p != nil {
		return (*p)[i]
	}
	return i
}

// RowLen returns the number of stored features at position i.
func (d *Dataset) RowLen(i int) int { return d.x.RowLen(d.Row(i)) }

// Get materializes the sample at position i.
func (d *Dataset) Get(i int) (Sample, error) {
	if i < 0 || i >= d.Len() {
		return Sample{}, fmt.Errorf("%w: index %d of %d", csr.ErrOutOfRange, i, d.Len())
	}
	r := d.Row(i)
	idx, vals := d.x.Row(r)
	labels, _ := d.y.Row(r)
	return Sample{
		Indices: slices.Clone(idx),
		Weights: slices.Clone(vals),
		Labels:  slices.Clone(labels),
	}, nil
}
