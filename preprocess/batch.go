package preprocess

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/hupe1980/xmcdata/dataset"
)

// Layout selects how variable-length examples are packed.
type Layout int

const (
	// Padded packs examples into zero-padded [batch, max_len] matrices.
	Padded Layout = iota
	// Bag concatenates examples and records their start offsets.
	Bag
)

func (l Layout) String() string {
	switch l {
	case Padded:
		return "padded"
	case Bag:
		return "bag"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Batch is one collated window of examples. Matrices are stored row-major.
type Batch struct {
	Layout Layout
	// Size is the number of examples.
	Size int
	// MaxLen is the padded row length. Zero in the bag layout.
	MaxLen int

	// Indices holds [Size, MaxLen] shifted feature indices (0 is padding) in
	// the padded layout and all unshifted indices back to back in the bag
	// layout.
	Indices []int64
	// Weights holds [Size, MaxLen] feature weights. Nil in the bag layout.
	Weights []float32
	// Offsets holds the start of each example in Indices. Nil in the padded
	// layout.
	Offsets []int64

	// NumLabels is the width of a dense label row.
	NumLabels int
	// Labels holds [Size, NumLabels] dense label weights. Nil when single
	// labels are sampled.
	Labels []float32
	// LabelIDs holds one sampled label per example. Nil for dense labels.
	LabelIDs []int64

	// Positions are the dataset positions of the examples, when known.
	Positions []int
}

// Collate transforms samples and packs them into one batch. r drives
// subsampling and label sampling; pass a private source per worker.
func (p *Preprocessor) Collate(r *rand.Rand, samples []dataset.Sample) (*Batch, error) {
	if len(samples) == 0 {
		return nil, errors.New("preprocess: empty batch")
	}

	xs := make([]Features, len(samples))
	b := &Batch{Layout: p.Layout(), Size: len(samples), NumLabels: p.labels}
	if p.cfg.SampleSingleLabel {
		b.LabelIDs = make([]int64, len(samples))
	} else {
		b.Labels = make([]float32, len(samples)*p.labels)
	}

	total := 0
	for i, s := range samples {
		x, err := p.XTransform(r, s)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		y, err := p.YTransform(r, s.Labels)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}

		xs[i] = x
		total += len(x.Indices)
		b.MaxLen = max(b.MaxLen, len(x.Indices))
		if y.Dense != nil {
			copy(b.Labels[i*p.labels:], y.Dense)
		} else {
			b.LabelIDs[i] = int64(y.ID)
		}
	}

	if b.Layout == Bag {
		b.MaxLen = 0
		b.Indices = make([]int64, 0, total)
		b.Offsets = make([]int64, len(xs))
		for i, x := range xs {
			b.Offsets[i] = int64(len(b.Indices))
			for _, idx := range x.Indices {
				b.Indices = append(b.Indices, int64(idx))
			}
		}
		return b, nil
	}

	b.Indices = make([]int64, b.Size*b.MaxLen)
	b.Weights = make([]float32, b.Size*b.MaxLen)
	for i, x := range xs {
		row := i * b.MaxLen
		for j, idx := range x.Indices {
			b.Indices[row+j] = int64(idx) + 1
		}
		copy(b.Weights[row:], x.Weights)
	}
	return b, nil
}

// Len returns the number of feature positions of example i, excluding
// padding.
func (b *Batch) Len(i int) int {
	if b.Layout == Bag {
		end := int64(len(b.Indices))
		if i+1 < len(b.Offsets) {
			end = b.Offsets[i+1]
		}
		return int(end - b.Offsets[i])
	}
	row := b.Indices[i*b.MaxLen : (i+1)*b.MaxLen]
	n := 0
	for n < len(row) && row[n] != 0 {
		n++
	}
	return n
}

// Example returns the stored indices and weights of example i. Weights is nil
// in the bag layout. Padded rows include their padding.
func (b *Batch) Example(i int) ([]int64, []float32) {
	if b.Layout == Bag {
		start := b.Offsets[i]
		return b.Indices[start : start+int64(b.Len(i))], nil
	}
	lo, hi := i*b.MaxLen, (i+1)*b.MaxLen
	return b.Indices[lo:hi], b.Weights[lo:hi]
}

// LabelRow returns the dense label row of example i, or nil when single
// labels are sampled.
func (b *Batch) LabelRow(i int) []float32 {
	if b.Labels == nil {
		return nil
	}
	return b.Labels[i*b.NumLabels : (i+1)*b.NumLabels]
}

// Cells returns the number of index slots in the batch and how many of them
// hold real features. Their ratio is the padding efficiency.
func (b *Batch) Cells() (total, used int) {
	if b.Layout == Bag {
		return len(b.Indices), len(b.Indices)
	}
	for _, idx := range b.Indices {
		if idx != 0 {
			used++
		}
	}
	return len(b.Indices), used
}

// Tensors holds a batch as gomlx tensors. Fields that do not apply to the
// layout are nil.
type Tensors struct {
	Indices *tensors.Tensor
	Weights *tensors.Tensor
	Offsets *tensors.Tensor
	Labels  *tensors.Tensor
}

// Tensors converts the batch into gomlx tensors for a model.
func (b *Batch) Tensors() (*Tensors, error) {
	if b.Size == 0 {
		return nil, errors.New("preprocess: empty batch")
	}

	t := &Tensors{}
	if b.Layout == Bag {
		t.Indices = tensors.FromAnyValue(b.Indices)
		t.Offsets = tensors.FromAnyValue(b.Offsets)
	} else {
		t.Indices = tensors.FromAnyValue(rows(b.Indices, b.Size, b.MaxLen))
		t.Weights = tensors.FromAnyValue(rows(b.Weights, b.Size, b.MaxLen))
	}
	if b.Labels != nil {
		t.Labels = tensors.FromAnyValue(rows(b.Labels, b.Size, b.NumLabels))
	} else {
		t.Labels = tensors.FromAnyValue(b.LabelIDs)
	}
	return t, nil
}

func rows[T any](flat []T, n, width int) [][]T {
	out := make([][]T, n)
	for i := range out {
		out[i] = flat[i*width : (i+1)*width]
	}
	return out
}
