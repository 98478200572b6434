package sampler

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequential(t *testing.T) {
	s := Sequential(4)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []int{0, 1, 2, 3}, s.Epoch())
	assert.Equal(t, []int{0, 1, 2, 3}, slices.Collect(s.Indices()))
	assert.Empty(t, Sequential(-1).Epoch())
}

func TestRandom(t *testing.T) {
	s := Random(50, 1)
	a, b := s.Epoch(), s.Epoch()
	assert.ElementsMatch(t, a, b)
	assert.NotEqual(t, a, b)

	sorted := slices.Sorted(slices.Values(a))
	for i, v := range sorted {
		assert.Equal(t, i, v)
	}

	// same seed, same sequence of epochs
	r := Random(50, 1)
	assert.Equal(t, a, r.Epoch())
	assert.Equal(t, b, r.Epoch())
}

func TestLocallySequential_Coverage(t *testing.T) {
	tests := []struct {
		n, window, want int
	}{
		{12, 4, 12},
		{14, 4, 12},
		{3, 4, 0},
		{10, 1, 10},
		{10, 0, 10},
	}
	for _, tt := range tests {
		s := LocallySequential(tt.n, tt.window, 7)
		require.Equal(t, tt.want, s.Len())

		for epoch := 0; epoch < 3; epoch++ {
			order := s.Epoch()
			require.Len(t, order, tt.want)

			seen := make(map[int]bool, len(order))
			for _, i := range order {
				assert.False(t, seen[i], "index %d repeated", i)
				assert.Less(t, i, tt.want)
				seen[i] = true
			}

			w := s.Window()
			for k := 0; k+1 < len(order); k++ {
				if (k+1)%w != 0 {
					assert.Equal(t, order[k]+1, order[k+1])
				}
			}
			for k := 0; k < len(order); k += w {
				assert.Zero(t, order[k]%w)
			}
		}
	}
}

func TestLocallySequential_Restartable(t *testing.T) {
	s := LocallySequential(40, 4, 3)

	var first []int
	for i := range s.Indices() {
		first = append(first, i)
		if len(first) == 5 {
			break
		}
	}
	assert.Len(t, first, 5)

	distinct := false
	for epoch := 0; epoch < 5; epoch++ {
		full := slices.Collect(s.Indices())
		assert.Len(t, full, 40)
		if !slices.Equal(full[:5], first) {
			distinct = true
		}
	}
	assert.True(t, distinct)
}

func TestBatches(t *testing.T) {
	order := []int{5, 6, 7, 8, 9, 10, 11}

	assert.Equal(t, [][]int{{5, 6, 7}, {8, 9, 10}, {11}}, Batches(order, 3, false))
	assert.Equal(t, [][]int{{5, 6, 7}, {8, 9, 10}}, Batches(order, 3, true))
	assert.Equal(t, [][]int{order}, Batches(order, 10, false))
	assert.Empty(t, Batches(order, 10, true))
	assert.Nil(t, Batches(order, 0, false))
	assert.Empty(t, Batches(nil, 2, false))

	// batches cannot grow into each other
	b := Batches(order, 3, false)
	b[0] = append(b[0], 99)
	assert.Equal(t, 8, order[3])
}
