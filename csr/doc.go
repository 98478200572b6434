// Package csr implements an immutable compressed-sparse-row matrix.
//
// A Matrix stores the nonzero entries of each row contiguously:
//
//	Data[Indptr[r]:Indptr[r+1]]    values of row r
//	Indices[Indptr[r]:Indptr[r+1]] column positions of row r
//
// Every operation that changes structure (column/row selection, transposition,
// canonicalization) returns a new Matrix built from freshly allocated buffers.
// A Matrix is never mutated after construction, so it can be shared across
// goroutines without synchronization.
//
// Storage widths follow the on-disk cache format: float32 values and uint32
// indices. Builders fail with ErrTooLarge rather than overflow.
package csr
