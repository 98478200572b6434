package preprocess

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/hupe1980/xmcdata/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }

var samples = []dataset.Sample{
	{Indices: []uint32{0, 1, 2}, Weights: []float32{1.1, 1.2, 1.3}, Labels: []uint32{1, 2}},
	{Indices: []uint32{2}, Weights: []float32{1.4}, Labels: []uint32{1}},
	{Indices: []uint32{1, 2}, Weights: []float32{1.5, 1.6}, Labels: []uint32{0}},
}

func plain() Config { return Config{MaxRepeat: 1} }

func TestCollate_Padded(t *testing.T) {
	p, err := New(4, plain())
	require.NoError(t, err)

	b, err := p.Collate(newRand(1), samples)
	require.NoError(t, err)

	assert.Equal(t, Padded, b.Layout)
	assert.Equal(t, 3, b.Size)
	assert.Equal(t, 3, b.MaxLen)
	assert.Equal(t, []int64{
		1, 2, 3,
		3, 0, 0,
		2, 3, 0,
	}, b.Indices)
	assert.Equal(t, []float32{
		1.1, 1.2, 1.3,
		1.4, 0, 0,
		1.5, 1.6, 0,
	}, b.Weights)
	assert.Equal(t, []float32{
		0, 1, 1, 0,
		0, 1, 0, 0,
		1, 0, 0, 0,
	}, b.Labels)
	assert.Nil(t, b.Offsets)
	assert.Nil(t, b.LabelIDs)

	assert.Equal(t, []int{3, 1, 2}, []int{b.Len(0), b.Len(1), b.Len(2)})
	idx, w := b.Example(2)
	assert.Equal(t, []int64{2, 3, 0}, idx)
	assert.Equal(t, []float32{1.5, 1.6, 0}, w)
	assert.Equal(t, []float32{0, 1, 0, 0}, b.LabelRow(1))

	total, used := b.Cells()
	assert.Equal(t, 9, total)
	assert.Equal(t, 6, used)
}

func TestCollate_PaddedShapeLaw(t *testing.T) {
	r := newRand(3)
	p, err := New(8, DefaultConfig())
	require.NoError(t, err)

	batch := make([]dataset.Sample, 16)
	for i := range batch {
		n := 1 + r.IntN(20)
		s := dataset.Sample{Labels: []uint32{uint32(r.IntN(8))}}
		for j := 0; j < n; j++ {
			s.Indices = append(s.Indices, uint32(j*3))
			s.Weights = append(s.Weights, 1+r.Float32())
		}
		batch[i] = s
	}

	b, err := p.Collate(r, batch)
	require.NoError(t, err)

	maxLen := 0
	for _, s := range batch {
		maxLen = max(maxLen, len(s.Indices))
	}
	require.Equal(t, maxLen, b.MaxLen)
	require.Len(t, b.Indices, len(batch)*maxLen)

	for i, s := range batch {
		for j := 0; j < maxLen; j++ {
			got := b.Indices[i*maxLen+j]
			if j < len(s.Indices) {
				assert.Equal(t, int64(s.Indices[j])+1, got)
			} else {
				assert.Zero(t, got)
				assert.Zero(t, b.Weights[i*maxLen+j])
			}
		}
	}
}

func TestCollate_Bag(t *testing.T) {
	cfg := Config{UseBag: true, MaxRepeat: 3}
	p, err := New(4, cfg)
	require.NoError(t, err)

	batch := []dataset.Sample{
		{Indices: []uint32{4, 5, 6}, Weights: []float32{0.2, 2.4, 7}, Labels: []uint32{0}},
		{Indices: []uint32{1}, Weights: []float32{2.5}, Labels: []uint32{3}},
		{Indices: []uint32{9, 8}, Weights: []float32{1, 1}, Labels: []uint32{1, 2}},
	}
	b, err := p.Collate(newRand(1), batch)
	require.NoError(t, err)

	assert.Equal(t, Bag, b.Layout)
	// 0.2 -> 1, 2.4 -> 2, 7 -> capped at 3, 2.5 rounds half to even -> 2
	assert.Equal(t, []int64{4, 5, 5, 6, 6, 6, 1, 1, 9, 8}, b.Indices)
	assert.Equal(t, []int64{0, 6, 8}, b.Offsets)
	assert.Nil(t, b.Weights)
	assert.Zero(t, b.MaxLen)

	// offset law
	require.Len(t, b.Offsets, b.Size)
	assert.Zero(t, b.Offsets[0])
	sum := 0
	for i := 0; i < b.Size; i++ {
		if i+1 < b.Size {
			assert.Equal(t, int64(b.Len(i)), b.Offsets[i+1]-b.Offsets[i])
		}
		sum += b.Len(i)
	}
	assert.Equal(t, len(b.Indices), sum)

	idx, w := b.Example(1)
	assert.Equal(t, []int64{1, 1}, idx)
	assert.Nil(t, w)

	total, used := b.Cells()
	assert.Equal(t, total, used)
}

func TestXTransform(t *testing.T) {
	s := dataset.Sample{Indices: []uint32{1, 2}, Weights: []float32{0, float32(math.E - 1)}, Labels: []uint32{0}}

	t.Run("log", func(t *testing.T) {
		p, err := New(1, Config{LogTransform: true, MaxRepeat: 1})
		require.NoError(t, err)
		x, err := p.XTransform(newRand(1), s)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0, 1}, x.Weights, 1e-6)
		// input untouched
		assert.Equal(t, float32(0), s.Weights[0])
	})

	t.Run("log then sqrt", func(t *testing.T) {
		s := dataset.Sample{Indices: []uint32{0}, Weights: []float32{float32(math.Exp(4) - 1)}}
		p, err := New(1, Config{LogTransform: true, SqrtTransform: true, MaxRepeat: 1})
		require.NoError(t, err)
		x, err := p.XTransform(newRand(1), s)
		require.NoError(t, err)
		assert.InDelta(t, 2, x.Weights[0], 1e-5)
	})

	t.Run("subsample", func(t *testing.T) {
		p, err := New(1, Config{Subsample: 4, MaxRepeat: 1})
		require.NoError(t, err)

		big := dataset.Sample{}
		for i := 0; i < 10; i++ {
			big.Indices = append(big.Indices, uint32(10+i))
			big.Weights = append(big.Weights, float32(10+i))
		}

		r := newRand(5)
		seen := map[uint32]bool{}
		for trial := 0; trial < 20; trial++ {
			x, err := p.XTransform(r, big)
			require.NoError(t, err)
			require.Len(t, x.Indices, 4)
			assert.True(t, slices.IsSorted(x.Indices))
			for i, idx := range x.Indices {
				assert.Equal(t, float32(idx), x.Weights[i])
				seen[idx] = true
			}
		}
		assert.Greater(t, len(seen), 4)

		short, err := p.XTransform(r, s)
		require.NoError(t, err)
		assert.Equal(t, s.Indices, short.Indices)
	})

	t.Run("empty", func(t *testing.T) {
		p, err := New(1, plain())
		require.NoError(t, err)
		_, err = p.XTransform(newRand(1), dataset.Sample{Labels: []uint32{0}})
		assert.ErrorIs(t, err, ErrEmptyExample)
	})
}

func TestYTransform(t *testing.T) {
	t.Run("scaled", func(t *testing.T) {
		p, err := New(4, Config{ScaleY: true, MaxRepeat: 1})
		require.NoError(t, err)
		y, err := p.YTransform(newRand(1), []uint32{1, 3})
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0.5, 0, 0.5}, y.Dense)
	})

	t.Run("single label", func(t *testing.T) {
		p, err := New(10, Config{SampleSingleLabel: true, MaxRepeat: 1})
		require.NoError(t, err)

		r := newRand(9)
		seen := map[uint32]bool{}
		for i := 0; i < 50; i++ {
			y, err := p.YTransform(r, []uint32{2, 5, 7})
			require.NoError(t, err)
			assert.Nil(t, y.Dense)
			assert.Contains(t, []uint32{2, 5, 7}, y.ID)
			seen[y.ID] = true
		}
		assert.Len(t, seen, 3)

		b, err := p.Collate(r, samples)
		require.NoError(t, err)
		assert.Nil(t, b.Labels)
		require.Len(t, b.LabelIDs, 3)
		assert.Equal(t, int64(1), b.LabelIDs[1])
		assert.Nil(t, b.LabelRow(0))
	})

	t.Run("errors", func(t *testing.T) {
		p, err := New(2, plain())
		require.NoError(t, err)
		_, err = p.YTransform(newRand(1), nil)
		assert.ErrorIs(t, err, ErrEmptyExample)
		_, err = p.YTransform(newRand(1), []uint32{2})
		assert.Error(t, err)
	})
}

func TestCollate_Errors(t *testing.T) {
	p, err := New(4, plain())
	require.NoError(t, err)

	_, err = p.Collate(newRand(1), nil)
	assert.Error(t, err)

	bad := append(slices.Clone(samples), dataset.Sample{Indices: []uint32{1}, Weights: []float32{1}})
	_, err = p.Collate(newRand(1), bad)
	assert.ErrorIs(t, err, ErrEmptyExample)
	assert.ErrorContains(t, err, "example 3")
}

func TestConfig(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, Padded, DefaultConfig().Layout())
	assert.Equal(t, Bag, Config{UseBag: true}.Layout())

	assert.ErrorIs(t, Config{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{MaxRepeat: 1, Subsample: -1}.Validate(), ErrInvalidConfig)

	_, err := New(0, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(3, Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBatch_Tensors(t *testing.T) {
	p, err := New(4, plain())
	require.NoError(t, err)
	b, err := p.Collate(newRand(1), samples)
	require.NoError(t, err)

	ts, err := b.Tensors()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, ts.Indices.Shape().Dimensions)
	assert.Equal(t, []int{3, 3}, ts.Weights.Shape().Dimensions)
	assert.Equal(t, []int{3, 4}, ts.Labels.Shape().Dimensions)
	assert.Nil(t, ts.Offsets)

	bp, err := New(4, Config{UseBag: true, MaxRepeat: 1, SampleSingleLabel: true})
	require.NoError(t, err)
	bag, err := bp.Collate(newRand(1), samples)
	require.NoError(t, err)

	ts, err = bag.Tensors()
	require.NoError(t, err)
	assert.Equal(t, []int{6}, ts.Indices.Shape().Dimensions)
	assert.Equal(t, []int{3}, ts.Offsets.Shape().Dimensions)
	assert.Equal(t, []int{3}, ts.Labels.Shape().Dimensions)
	assert.Nil(t, ts.Weights)

	_, err = (&Batch{}).Tensors()
	assert.Error(t, err)
}
