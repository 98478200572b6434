package csr

import (
	"fmt"
	"math"
)

// Matrix is an immutable compressed-sparse-row matrix.
type Matrix struct {
	data    []float32
	indices []uint32
	indptr  []uint32
	rows    int
	cols    int
}

// New builds a Matrix from raw CSR buffers and takes ownership of them.
//
// New checks the structural invariants that every CSR matrix must satisfy:
// len(indptr) == rows+1, indptr[0] == 0, indptr non-decreasing,
// indptr[rows] == len(data) == len(indices) and every column index < cols.
// Per-row ordering is not required here; use Validate or Canonicalize for that.
func New(data []float32, indices, indptr []uint32, rows, cols int) (*Matrix, error) {
	m := &Matrix{
		data:    data,
		indices: indices,
		indptr:  indptr,
		rows:    rows,
		cols:    cols,
	}
	if err := m.checkStructure(); err != nil {
		return nil, err
	}
	return m, nil
}

// Empty returns a rows x cols matrix without stored entries.
func Empty(rows, cols int) *Matrix {
	return &Matrix{
		indptr: make([]uint32, rows+1),
		rows:   rows,
		cols:   cols,
	}
}

func (m *Matrix) checkStructure() error {
	if m.rows < 0 || m.cols < 0 {
		return fmt.Errorf("%w: negative shape (%d, %d)", ErrInvalidStructure, m.rows, m.cols)
	}
	if uint64(m.cols) > math.MaxUint32+1 {
		return fmt.Errorf("%w: %d columns", ErrTooLarge, m.cols)
	}
	if len(m.indptr) != m.rows+1 {
		return fmt.Errorf("%w: indptr has %d entries, want %d", ErrInvalidStructure, len(m.indptr), m.rows+1)
	}
	if m.indptr[0] != 0 {
		return fmt.Errorf("%w: indptr[0] = %d", ErrInvalidStructure, m.indptr[0])
	}
	if len(m.data) != len(m.indices) {
		return fmt.Errorf("%w: %d values but %d indices", ErrInvalidStructure, len(m.data), len(m.indices))
	}
	if int(m.indptr[m.rows]) != len(m.data) {
		return fmt.Errorf("%w: indptr[%d] = %d but %d values stored", ErrInvalidStructure, m.rows, m.indptr[m.rows], len(m.data))
	}
	for r := 0; r < m.rows; r++ {
		if m.indptr[r] > m.indptr[r+1] {
			return fmt.Errorf("%w: indptr decreases at row %d", ErrInvalidStructure, r)
		}
	}
	for i, c := range m.indices {
		if int(c) >= m.cols {
			return fmt.Errorf("%w: column %d at entry %d, shape has %d columns", ErrOutOfRange, c, i, m.cols)
		}
	}
	return nil
}

// Validate checks the full set of invariants of a canonical matrix: the
// structural ones checked by New plus strictly increasing column indices
// within each row.
func (m *Matrix) Validate() error {
	if err := m.checkStructure(); err != nil {
		return err
	}
	for r := 0; r < m.rows; r++ {
		start, end := m.indptr[r], m.indptr[r+1]
		for k := start + 1; k < end; k++ {
			if m.indices[k-1] >= m.indices[k] {
				return fmt.Errorf("%w: row %d", ErrNotCanonical, r)
			}
		}
	}
	return nil
}

// IsCanonical reports whether every row has strictly increasing column indices.
func (m *Matrix) IsCanonical() bool {
	for r := 0; r < m.rows; r++ {
		start, end := m.indptr[r], m.indptr[r+1]
		for k := start + 1; k < end; k++ {
			if m.indices[k-1] >= m.indices[k] {
				return false
			}
		}
	}
	return true
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) { return m.rows, m.cols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.data) }

// Data returns the stored values. The slice must not be modified.
func (m *Matrix) Data() []float32 { return m.data }

// Indices returns the column index of every stored value. The slice must not be modified.
func (m *Matrix) Indices() []uint32 { return m.indices }

// Indptr returns the row offsets. The slice must not be modified.
func (m *Matrix) Indptr() []uint32 { return m.indptr }

// Row returns read-only views of the column indices and values of row r.
// It panics if r is out of range, like slice indexing.
func (m *Matrix) Row(r int) ([]uint32, []float32) {
	start, end := m.indptr[r], m.indptr[r+1]
	return m.indices[start:end:end], m.data[start:end:end]
}

// RowLen returns the number of stored entries in row r.
func (m *Matrix) RowLen(r int) int {
	return int(m.indptr[r+1] - m.indptr[r])
}

// DenseRow expands row r into a dense vector of length Cols, summing
// duplicate entries.
func (m *Matrix) DenseRow(r int) ([]float32, error) {
	if r < 0 || r >= m.rows {
		return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfRange, r, m.rows)
	}
	out := make([]float32, m.cols)
	idx, val := m.Row(r)
	for k, c := range idx {
		out[c] += val[k]
	}
	return out, nil
}

// Dense expands the whole matrix. Intended for tests and small matrices.
func (m *Matrix) Dense() [][]float32 {
	out := make([][]float32, m.rows)
	for r := range out {
		out[r], _ = m.DenseRow(r)
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		data:    append([]float32(nil), m.data...),
		indices: append([]uint32(nil), m.indices...),
		indptr:  append([]uint32(nil), m.indptr...),
		rows:    m.rows,
		cols:    m.cols,
	}
}

// Equal reports whether both matrices have identical shape and buffers.
// Values are compared bitwise so that NaN payloads and signed zeros survive
// round-trip checks.
func (m *Matrix) Equal(o *Matrix) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.rows != o.rows || m.cols != o.cols || len(m.data) != len(o.data) {
		return false
	}
	for i := range m.indptr {
		if m.indptr[i] != o.indptr[i] {
			return false
		}
	}
	for i := range m.indices {
		if m.indices[i] != o.indices[i] {
			return false
		}
	}
	for i := range m.data {
		if math.Float32bits(m.data[i]) != math.Float32bits(o.data[i]) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (m *Matrix) String() string {
	return fmt.Sprintf("csr.Matrix(%dx%d, nnz=%d)", m.rows, m.cols, len(m.data))
}
