package testutil

import (
	"strings"
	"testing"

	"github.com/hupe1980/xmcdata/libsvm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a, b := NewRNG(7), NewRNG(7)
	assert.Equal(t, a.Perm(20), b.Perm(20))
	assert.Equal(t, a.Intn(1000), b.Intn(1000))

	first := a.Float32()
	a.Reset()
	a.Perm(20)
	a.Intn(1000)
	assert.Equal(t, first, a.Float32())
	assert.Equal(t, int64(7), a.Seed())
}

func TestRandomCSR(t *testing.T) {
	m := RandomCSR(NewRNG(1), 50, 30, 0.2)
	require.NoError(t, m.Validate())
	assert.Equal(t, 50, m.Rows())
	assert.Equal(t, 30, m.Cols())
	for _, v := range m.Data() {
		assert.Greater(t, v, float32(0))
	}
}

func TestRandomLabels(t *testing.T) {
	y := RandomLabels(NewRNG(2), 40, 10, 3)
	require.NoError(t, y.Validate())
	for r := 0; r < y.Rows(); r++ {
		n := y.RowLen(r)
		assert.True(t, n >= 1 && n <= 3)
	}
}

func TestFormatLibSVM_RoundTrip(t *testing.T) {
	rng := NewRNG(3)
	X := RandomCSR(rng, 25, 12, 0.4)
	Y := RandomLabels(rng, 25, 6, 2)

	px, py, err := libsvm.Parse(strings.NewReader(FormatLibSVM(X, Y)))
	require.NoError(t, err)
	// rows without features are skipped by the parser
	assert.LessOrEqual(t, px.Rows(), X.Rows())
	assert.Equal(t, px.Rows(), py.Rows())
	assert.Equal(t, X.Cols(), px.Cols())
}
