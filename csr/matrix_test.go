package csr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fromDense builds a canonical matrix from a dense table, skipping zeros.
func fromDense(t *testing.T, rows [][]float32, cols int) *Matrix {
	t.Helper()
	b := NewBuilder(cols)
	for _, row := range rows {
		var idx []uint32
		var val []float32
		for c, v := range row {
			if v != 0 {
				idx = append(idx, uint32(c))
				val = append(val, v)
			}
		}
		require.NoError(t, b.AppendRow(idx, val))
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		data    []float32
		indices []uint32
		indptr  []uint32
		rows    int
		cols    int
		wantErr error
	}{
		{"valid", []float32{1, 2}, []uint32{0, 2}, []uint32{0, 1, 2}, 2, 3, nil},
		{"empty", nil, nil, []uint32{0}, 0, 4, nil},
		{"short indptr", []float32{1}, []uint32{0}, []uint32{0}, 1, 1, ErrInvalidStructure},
		{"indptr does not start at zero", []float32{1}, []uint32{0}, []uint32{1, 1}, 1, 1, ErrInvalidStructure},
		{"last offset mismatch", []float32{1, 2}, []uint32{0, 1}, []uint32{0, 1}, 1, 2, ErrInvalidStructure},
		{"length mismatch", []float32{1, 2}, []uint32{0}, []uint32{0, 2}, 1, 2, ErrInvalidStructure},
		{"decreasing indptr", []float32{1, 2}, []uint32{0, 1}, []uint32{0, 2, 1, 2}, 3, 2, ErrInvalidStructure},
		{"column out of range", []float32{1}, []uint32{5}, []uint32{0, 1}, 1, 3, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.data, tt.indices, tt.indptr, tt.rows, tt.cols)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_Canonical(t *testing.T) {
	m, err := New([]float32{1, 2}, []uint32{2, 1}, []uint32{0, 2}, 1, 3)
	require.NoError(t, err)
	assert.False(t, m.IsCanonical())
	assert.ErrorIs(t, m.Validate(), ErrNotCanonical)

	dup, err := New([]float32{1, 2}, []uint32{1, 1}, []uint32{0, 2}, 1, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, dup.Validate(), ErrNotCanonical)

	assert.NoError(t, m.Canonicalize().Validate())
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(4)
	require.NoError(t, b.AppendRow([]uint32{0, 3}, []float32{1.5, 2.5}))
	require.NoError(t, b.AppendRow([]uint32{1}, nil))
	assert.Equal(t, 2, b.Rows())
	assert.Equal(t, 3, b.NNZ())

	assert.ErrorIs(t, b.AppendRow([]uint32{4}, []float32{1}), ErrOutOfRange)
	assert.ErrorIs(t, b.AppendRow([]uint32{1, 2}, []float32{1}), ErrShapeMismatch)
	assert.Equal(t, 2, b.Rows(), "failed appends must not add rows")

	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, [][]float32{
		{1.5, 0, 0, 2.5},
		{0, 1, 0, 0},
	}, m.Dense())
}

func TestBuilder_Grow(t *testing.T) {
	b := NewBuilder(3)
	require.NoError(t, b.AppendRow([]uint32{0, 2}, []float32{1, 2}))
	b.Grow(10)
	assert.GreaterOrEqual(t, cap(b.data)-len(b.data), 10)
	assert.GreaterOrEqual(t, cap(b.indices)-len(b.indices), 10)

	require.NoError(t, b.AppendRow([]uint32{1}, nil))
	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, [][]float32{
		{1, 0, 2},
		{0, 1, 0},
	}, m.Dense())
}

func TestRowAccess(t *testing.T) {
	m := fromDense(t, [][]float32{
		{0, 0, 1},
		{2, 0, 0},
		{0, 0, 0},
	}, 3)

	idx, val := m.Row(0)
	assert.Equal(t, []uint32{2}, idx)
	assert.Equal(t, []float32{1}, val)
	assert.Equal(t, 0, m.RowLen(2))

	_, err := m.DenseRow(3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	r, c := m.Shape()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, m.NNZ())
}

func TestCloneAndEqual(t *testing.T) {
	m := fromDense(t, [][]float32{{1, 0, 2}, {0, 3, 0}}, 3)
	c := m.Clone()
	assert.True(t, m.Equal(c))

	other := fromDense(t, [][]float32{{1, 0, 2}, {0, 4, 0}}, 3)
	assert.False(t, m.Equal(other))
	assert.False(t, m.Equal(Empty(2, 3)))
	assert.True(t, Empty(2, 3).Equal(Empty(2, 3)))
}
