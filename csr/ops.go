package csr

import (
	"fmt"
	"slices"
)

// Transpose returns the transpose as a new CSR matrix, which is the same
// buffer layout as the compressed-column form of m. It runs in O(nnz + cols).
//
// Entries of each output row appear in increasing order of their original row,
// so the result is canonical whenever m has no duplicate entries.
func (m *Matrix) Transpose() *Matrix {
	nnz := len(m.data)
	indptr := make([]uint32, m.cols+1)
	for _, c := range m.indices {
		indptr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		indptr[c+1] += indptr[c]
	}

	next := make([]uint32, m.cols)
	copy(next, indptr[:m.cols])
	indices := make([]uint32, nnz)
	data := make([]float32, nnz)
	for r := 0; r < m.rows; r++ {
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			c := m.indices[k]
			dst := next[c]
			indices[dst] = uint32(r)
			data[dst] = m.data[k]
			next[c]++
		}
	}

	return &Matrix{
		data:    data,
		indices: indices,
		indptr:  indptr,
		rows:    m.cols,
		cols:    m.rows,
	}
}

// RowNNZ returns, for every row, the number of distinct columns holding a
// positive value.
func (m *Matrix) RowNNZ() []int {
	counts := make([]int, m.rows)
	// stamp[c] == r+1 marks column c as already counted for row r.
	stamp := make([]int, m.cols)
	for r := 0; r < m.rows; r++ {
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			if m.data[k] <= 0 {
				continue
			}
			c := m.indices[k]
			if stamp[c] != r+1 {
				stamp[c] = r + 1
				counts[r]++
			}
		}
	}
	return counts
}

// ColumnNNZ returns, for every column, the number of distinct rows holding a
// positive value. The count is taken on the column-oriented layout so that the
// reduction stays O(nnz).
func (m *Matrix) ColumnNNZ() []int {
	t := m.Transpose()
	counts := make([]int, t.rows)
	for c := 0; c < t.rows; c++ {
		last := -1
		for k := t.indptr[c]; k < t.indptr[c+1]; k++ {
			if t.data[k] <= 0 {
				continue
			}
			// rows are ascending within a transposed row, duplicates are adjacent
			if r := int(t.indices[k]); r != last {
				last = r
				counts[c]++
			}
		}
	}
	return counts
}

// SelectColumns returns a new matrix restricted to the columns with keep[c]
// set. Surviving columns are renumbered densely in their original order and
// the relative order of entries inside each row is preserved.
func (m *Matrix) SelectColumns(keep []bool) (*Matrix, error) {
	if len(keep) != m.cols {
		return nil, fmt.Errorf("%w: column mask has %d entries, matrix has %d columns", ErrShapeMismatch, len(keep), m.cols)
	}

	remap := make([]int64, m.cols)
	newCols := 0
	for c, ok := range keep {
		if ok {
			remap[c] = int64(newCols)
			newCols++
		} else {
			remap[c] = -1
		}
	}

	nnz := 0
	for _, c := range m.indices {
		if remap[c] >= 0 {
			nnz++
		}
	}

	data := make([]float32, 0, nnz)
	indices := make([]uint32, 0, nnz)
	indptr := make([]uint32, m.rows+1)
	for r := 0; r < m.rows; r++ {
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			if nc := remap[m.indices[k]]; nc >= 0 {
				indices = append(indices, uint32(nc))
				data = append(data, m.data[k])
			}
		}
		indptr[r+1] = uint32(len(data))
	}

	return &Matrix{
		data:    data,
		indices: indices,
		indptr:  indptr,
		rows:    m.rows,
		cols:    newCols,
	}, nil
}

// SelectRows returns a new matrix holding only the rows with keep[r] set,
// in their original order.
func (m *Matrix) SelectRows(keep []bool) (*Matrix, error) {
	if len(keep) != m.rows {
		return nil, fmt.Errorf("%w: row mask has %d entries, matrix has %d rows", ErrShapeMismatch, len(keep), m.rows)
	}

	nnz, rows := 0, 0
	for r, ok := range keep {
		if ok {
			nnz += m.RowLen(r)
			rows++
		}
	}

	data := make([]float32, 0, nnz)
	indices := make([]uint32, 0, nnz)
	indptr := make([]uint32, 1, rows+1)
	for r, ok := range keep {
		if !ok {
			continue
		}
		start, end := m.indptr[r], m.indptr[r+1]
		indices = append(indices, m.indices[start:end]...)
		data = append(data, m.data[start:end]...)
		indptr = append(indptr, uint32(len(data)))
	}

	return &Matrix{
		data:    data,
		indices: indices,
		indptr:  indptr,
		rows:    rows,
		cols:    m.cols,
	}, nil
}

// Canonicalize returns a new matrix in which every row has strictly
// increasing column indices; duplicate entries are merged by summation.
// Explicitly stored zeros are kept.
func (m *Matrix) Canonicalize() *Matrix {
	data := make([]float32, 0, len(m.data))
	indices := make([]uint32, 0, len(m.indices))
	indptr := make([]uint32, m.rows+1)

	type entry struct {
		col uint32
		val float32
	}
	var row []entry

	for r := 0; r < m.rows; r++ {
		start, end := m.indptr[r], m.indptr[r+1]
		row = row[:0]
		for k := start; k < end; k++ {
			row = append(row, entry{col: m.indices[k], val: m.data[k]})
		}
		slices.SortStableFunc(row, func(a, b entry) int {
			switch {
			case a.col < b.col:
				return -1
			case a.col > b.col:
				return 1
			default:
				return 0
			}
		})
		for i, e := range row {
			if i > 0 && e.col == row[i-1].col {
				data[len(data)-1] += e.val
				continue
			}
			indices = append(indices, e.col)
			data = append(data, e.val)
		}
		indptr[r+1] = uint32(len(data))
	}

	return &Matrix{
		data:    data,
		indices: indices,
		indptr:  indptr,
		rows:    m.rows,
		cols:    m.cols,
	}
}

// ColumnSums returns the sum of every column, including duplicate entries.
func (m *Matrix) ColumnSums() []float64 {
	sums := make([]float64, m.cols)
	for k, c := range m.indices {
		sums[c] += float64(m.data[k])
	}
	return sums
}
