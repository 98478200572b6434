package trim

import (
	"fmt"

	"github.com/hupe1980/xmcdata/csr"
)

// Axis selects whether a mask ranges over columns or rows.
type Axis int

const (
	// Columns masks the columns of a matrix.
	Columns Axis = iota
	// Rows masks the rows of a matrix.
	Rows
)

func (a Axis) String() string {
	switch a {
	case Columns:
		return "columns"
	case Rows:
		return "rows"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ComputeMask keeps every column (or row) that has a positive entry in at
// least threshold distinct rows (or columns). A threshold <= 0 keeps
// everything, including empty positions.
func ComputeMask(m *csr.Matrix, axis Axis, threshold int) *Mask {
	var counts []int
	switch axis {
	case Rows:
		counts = m.RowNNZ()
	default:
		counts = m.ColumnNNZ()
	}

	mask := NewMask(len(counts))
	for i, c := range counts {
		if c >= threshold {
			mask.rb.Add(uint32(i))
		}
	}
	return mask
}

// Apply returns a new matrix restricted to the positions kept by mask.
// It fails with csr.ErrShapeMismatch when the mask length does not match the
// masked dimension.
func Apply(m *csr.Matrix, axis Axis, mask *Mask) (*csr.Matrix, error) {
	switch axis {
	case Rows:
		if mask.Len() != m.Rows() {
			return nil, fmt.Errorf("%w: row mask has %d entries, matrix has %d rows", csr.ErrShapeMismatch, mask.Len(), m.Rows())
		}
		return m.SelectRows(mask.Bools())
	default:
		if mask.Len() != m.Cols() {
			return nil, fmt.Errorf("%w: column mask has %d entries, matrix has %d columns", csr.ErrShapeMismatch, mask.Len(), m.Cols())
		}
		return m.SelectColumns(mask.Bools())
	}
}
