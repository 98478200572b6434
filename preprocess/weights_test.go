package preprocess

import (
	"math"
	"testing"

	"github.com/hupe1980/xmcdata/csr"
	"github.com/hupe1980/xmcdata/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labels builds a 10-row label matrix where column 0 is set in 5 rows,
// column 1 in every row, column 2 in none and column 3 in one row.
func labels(t *testing.T) *csr.Matrix {
	t.Helper()
	b := csr.NewBuilder(4)
	for r := 0; r < 10; r++ {
		row := []uint32{}
		if r < 5 {
			row = append(row, 0)
		}
		row = append(row, 1)
		if r == 9 {
			row = append(row, 3)
		}
		require.NoError(t, b.AppendRow(row, nil))
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestComputeWeights(t *testing.T) {
	Y := labels(t)

	w, err := ComputeWeights(Y, WeightNone)
	require.NoError(t, err)
	// frequencies clamp to [0.2, 1)
	assert.InDeltaSlice(t, []float32{2, 1, 5, 5}, w.Positive, 1e-4)
	assert.InDelta(t, 2, w.Negative[0], 1e-6)
	assert.InDelta(t, 1.25, w.Negative[2], 1e-6)
	assert.InDelta(t, 1.25, w.Negative[3], 1e-6)
	assert.Greater(t, w.Negative[1], float32(1e5))

	w, err = ComputeWeights(Y, WeightSqrt)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2), w.Positive[0], 1e-6)
	assert.InDelta(t, math.Sqrt(1.25), w.Negative[2], 1e-6)

	w, err = ComputeWeights(Y, WeightSqrtPos)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5), w.Positive[2], 1e-6)
	assert.InDelta(t, 1.25, w.Negative[2], 1e-6)

	w, err = ComputeWeights(Y, WeightRow)
	require.NoError(t, err)
	for c := range w.Positive {
		assert.InDelta(t, 1, w.Positive[c]+w.Negative[c], 1e-6)
	}
	assert.InDelta(t, 0.8, w.Positive[2], 1e-6)

	w, err = ComputeWeights(Y, WeightFull)
	require.NoError(t, err)
	var total float64
	for c := range w.Positive {
		total += float64(w.Positive[c]) + float64(w.Negative[c])
	}
	assert.InDelta(t, 1, total, 1e-5)
}

func TestComputeWeights_FiniteAndNonNegative(t *testing.T) {
	Ys := []*csr.Matrix{
		labels(t),
		testutil.RandomLabels(testutil.NewRNG(4), 50, 30, 3),
		csr.Empty(1, 3),
		csr.Empty(7, 0),
	}
	for _, Y := range Ys {
		for _, mode := range []WeightMode{WeightNone, WeightSqrt, WeightSqrtPos, WeightRow, WeightFull} {
			w, err := ComputeWeights(Y, mode)
			require.NoError(t, err)
			require.Len(t, w.Positive, Y.Cols())
			for c := range w.Positive {
				for _, v := range []float32{w.Positive[c], w.Negative[c]} {
					assert.False(t, math.IsInf(float64(v), 0) || math.IsNaN(float64(v)), "%s class %d", mode, c)
					assert.GreaterOrEqual(t, v, float32(0))
				}
			}
		}
	}

	_, err := ComputeWeights(csr.Empty(0, 3), WeightNone)
	assert.ErrorIs(t, err, csr.ErrShapeMismatch)
	_, err = ComputeWeights(labels(t), WeightMode(42))
	assert.Error(t, err)
}

func TestParseWeightMode(t *testing.T) {
	for _, m := range []WeightMode{WeightNone, WeightSqrt, WeightSqrtPos, WeightRow, WeightFull} {
		got, err := ParseWeightMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseWeightMode("")
	require.NoError(t, err)
	assert.Equal(t, WeightNone, got)
	_, err = ParseWeightMode("log")
	assert.Error(t, err)
}

func TestWeights_ForExample(t *testing.T) {
	w := &Weights{Positive: []float32{2, 4}, Negative: []float32{0.5, 0.25}}

	assert.Equal(t, []float32{2, 0.25}, w.ForExample([]float32{1, 0}, nil))

	dst := make([]float32, 0, 4)
	out := w.ForExample([]float32{0.5, 1}, dst)
	assert.Equal(t, []float32{1.25, 4}, out)
	assert.Equal(t, cap(dst), cap(out))

	b := &Batch{Size: 2, NumLabels: 2, Labels: []float32{0.5, 0, 0, 1}}
	got, err := w.ForBatch(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 0.25, 0.5, 4}, got)

	_, err = w.ForBatch(&Batch{NumLabels: 2, LabelIDs: []int64{1}})
	assert.Error(t, err)
	_, err = w.ForBatch(&Batch{NumLabels: 3, Labels: make([]float32, 3)})
	assert.ErrorIs(t, err, csr.ErrShapeMismatch)
}
