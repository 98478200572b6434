package csr

import "errors"

var (
	// ErrInvalidStructure is returned when the indptr/indices/data triple
	// violates the CSR layout (lengths, monotonicity, first/last offsets).
	ErrInvalidStructure = errors.New("csr: invalid structure")

	// ErrOutOfRange is returned when a row or column index is outside the shape.
	ErrOutOfRange = errors.New("csr: index out of range")

	// ErrShapeMismatch is returned when operands disagree on a dimension,
	// e.g. a selection mask whose length differs from the selected axis.
	ErrShapeMismatch = errors.New("csr: shape mismatch")

	// ErrNotCanonical is returned by Validate when a row has unsorted or
	// duplicate column indices.
	ErrNotCanonical = errors.New("csr: row indices not strictly increasing")

	// ErrTooLarge is returned when the number of stored entries no longer fits
	// into the 32-bit offsets used by the format.
	ErrTooLarge = errors.New("csr: too many stored entries for 32-bit offsets")
)
