package trim

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/libsvm"
	"github.com/hupe1980/xmcdata/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) (*csr.Matrix, *csr.Matrix) {
	t.Helper()
	X, Y, err := libsvm.Parse(strings.NewReader(testutil.Fixture))
	require.NoError(t, err)
	return X, Y
}

func TestComputeMask(t *testing.T) {
	X, _ := fixture(t)

	tests := []struct {
		axis      Axis
		threshold int
		want      []bool
	}{
		{Columns, 0, []bool{true, true, true, true, true}},
		{Columns, 1, []bool{true, true, true, true, false}},
		{Columns, 2, []bool{true, true, true, false, false}},
		{Columns, 3, []bool{false, false, false, false, false}},
		{Rows, 2, []bool{true, true, false, true}},
		{Rows, 3, []bool{false, false, false, false}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.axis, tt.threshold), func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeMask(X, tt.axis, tt.threshold).Bools())
		})
	}
}

func TestComputeMask_CountsDistinctPositiveEntries(t *testing.T) {
	// row 0 repeats column 0 and stores an explicit zero in column 1
	m, err := csr.New(
		[]float32{1, 1, 0, 2},
		[]uint32{0, 0, 1, 1},
		[]uint32{0, 3, 4},
		2, 2,
	)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, ComputeMask(m, Columns, 1).Bools())
	assert.Equal(t, 0, ComputeMask(m, Columns, 2).Count())
	assert.Equal(t, []bool{true, true}, ComputeMask(m, Rows, 1).Bools())
	assert.Equal(t, 0, ComputeMask(m, Rows, 2).Count())
}

func TestComputeMask_Monotone(t *testing.T) {
	rng := testutil.NewRNG(7)
	m := testutil.RandomCSR(rng, 300, 120, 0.03)

	for _, axis := range []Axis{Columns, Rows} {
		prev := ComputeMask(m, axis, 0)
		for th := 1; th <= 12; th++ {
			cur := ComputeMask(m, axis, th)
			assert.True(t, prev.IsSupersetOf(cur), "%s threshold %d", axis, th)
			assert.LessOrEqual(t, cur.Count(), prev.Count())
			prev = cur
		}
	}
}

func TestApply(t *testing.T) {
	X, _ := fixture(t)

	got, err := Apply(X, Columns, NewMask(5, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1.1, 1.7}, {1.2, 0}, {0, 0}, {0, 1.6}}, got.Dense())

	got, err = Apply(X, Rows, NewMask(4, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rows())
	row, err := got.DenseRow(1)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1.5, 1.6, 0, 0}, row)

	// input untouched
	assert.Equal(t, 4, X.Rows())
	assert.Equal(t, 5, X.Cols())

	_, err = Apply(X, Columns, All(4))
	assert.ErrorIs(t, err, csr.ErrShapeMismatch)
	_, err = Apply(X, Rows, All(5))
	assert.ErrorIs(t, err, csr.ErrShapeMismatch)
}

func TestPair(t *testing.T) {
	X, Y := fixture(t)

	tests := []struct {
		name         string
		params       Params
		xRows, xCols int
		yRows, yCols int
	}{
		{"no thresholds", Params{}, 4, 5, 4, 4},
		{"min labels", Params{MinLabels: 2}, 3, 5, 3, 2},
		{"min words and labels", Params{MinWords: 2, MinLabels: 2}, 2, 3, 2, 2},
		{"explicit masks", Params{FeatureMask: NewMask(5, 3), LabelMask: All(4)}, 1, 1, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Pair(X, Y, tt.params)
			require.NoError(t, err)

			r, c := res.X.Shape()
			assert.Equal(t, [2]int{tt.xRows, tt.xCols}, [2]int{r, c})
			r, c = res.Y.Shape()
			assert.Equal(t, [2]int{tt.yRows, tt.yCols}, [2]int{r, c})

			assert.Equal(t, res.X.Rows(), res.RowMask.Count())
			assert.True(t, res.X.IsCanonical())
			assert.True(t, res.Y.IsCanonical())
			for _, n := range res.X.RowNNZ() {
				assert.Positive(t, n)
			}
			for _, n := range res.Y.RowNNZ() {
				assert.Positive(t, n)
			}
		})
	}
}

func TestPair_ColumnsBeforeRows(t *testing.T) {
	X, Y := fixture(t)

	res, err := Pair(X, Y, Params{MinWords: 2, MinLabels: 2})
	require.NoError(t, err)

	// row 2 loses its only feature column, row 3 its only label column
	assert.Equal(t, []bool{true, true, false, false}, res.RowMask.Bools())
	assert.Equal(t, [][]float32{{1.1, 0, 1.7}, {1.2, 1.3, 0}}, res.X.Dense())
	assert.Equal(t, [][]float32{{1, 1}, {1, 0}}, res.Y.Dense())
}

func TestPair_Errors(t *testing.T) {
	X, Y := fixture(t)

	_, err := Pair(X, csr.Empty(3, 4), Params{})
	assert.ErrorIs(t, err, csr.ErrShapeMismatch)

	_, err = Pair(X, Y, Params{FeatureMask: All(3)})
	assert.ErrorIs(t, err, csr.ErrShapeMismatch)
}

func TestPair_Canonicalizes(t *testing.T) {
	X, err := csr.New([]float32{1, 2, 3}, []uint32{2, 0, 2}, []uint32{0, 3}, 1, 3)
	require.NoError(t, err)
	Y, err := csr.New([]float32{1}, []uint32{0}, []uint32{0, 1}, 1, 1)
	require.NoError(t, err)

	res, err := Pair(X, Y, Params{})
	require.NoError(t, err)
	idx, vals := res.X.Row(0)
	assert.Equal(t, []uint32{0, 2}, idx)
	assert.Equal(t, []float32{2, 4}, vals)
}
