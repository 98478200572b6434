package csr

import (
	"fmt"

	"github.com/hupe1980/xmcdata/internal/conv"
)

// Builder accumulates rows into growable buffers and produces a Matrix.
// It is not safe for concurrent use.
type Builder struct {
	cols    int
	data    []float32
	indices []uint32
	indptr  []uint32
}

// NewBuilder creates a Builder for matrices with the given number of columns.
func NewBuilder(cols int) *Builder {
	return &Builder{
		cols:   cols,
		indptr: []uint32{0},
	}
}

// Grow pre-allocates room for n additional stored entries.
func (b *Builder) Grow(n int) {
	if free := cap(b.data) - len(b.data); free < n {
		data := make([]float32, len(b.data), len(b.data)+n)
		copy(data, b.data)
		b.data = data
		indices := make([]uint32, len(b.indices), len(b.indices)+n)
		copy(indices, b.indices)
		b.indices = indices
	}
}

// AppendRow appends one row. indices and values must have the same length;
// values may be nil, in which case every entry is stored as 1.
func (b *Builder) AppendRow(indices []uint32, values []float32) error {
	if values != nil && len(values) != len(indices) {
		return fmt.Errorf("%w: %d indices but %d values", ErrShapeMismatch, len(indices), len(values))
	}
	for _, c := range indices {
		if int(c) >= b.cols {
			return fmt.Errorf("%w: column %d, shape has %d columns", ErrOutOfRange, c, b.cols)
		}
	}
	end, err := conv.IntToUint32(len(b.data) + len(indices))
	if err != nil {
		return ErrTooLarge
	}

	b.indices = append(b.indices, indices...)
	if values == nil {
		for range indices {
			b.data = append(b.data, 1)
		}
	} else {
		b.data = append(b.data, values...)
	}
	b.indptr = append(b.indptr, end)
	return nil
}

// Rows returns the number of rows appended so far.
func (b *Builder) Rows() int { return len(b.indptr) - 1 }

// NNZ returns the number of entries appended so far.
func (b *Builder) NNZ() int { return len(b.data) }

// Build returns the accumulated matrix. The Builder must not be used afterwards.
func (b *Builder) Build() (*Matrix, error) {
	m, err := New(b.data, b.indices, b.indptr, b.Rows(), b.cols)
	b.data, b.indices, b.indptr = nil, nil, nil
	return m, err
}
