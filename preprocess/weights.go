package preprocess

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/xmcdata/csr"
	"gonum.org/v1/gonum/floats"
)

// WeightMode selects how class weights are normalized.
type WeightMode int

const (
	// WeightNone uses the inverse frequencies as is.
	WeightNone WeightMode = iota
	// WeightSqrt takes the square root of both weights.
	WeightSqrt
	// WeightSqrtPos takes the square root of the positive weight only.
	WeightSqrtPos
	// WeightRow divides both weights by their per-class sum.
	WeightRow
	// WeightFull divides both weights by the total over all classes.
	WeightFull
)

func (m WeightMode) String() string {
	switch m {
	case WeightNone:
		return "none"
	case WeightSqrt:
		return "sqrt"
	case WeightSqrtPos:
		return "sqrt-pos"
	case WeightRow:
		return "row"
	case WeightFull:
		return "full"
	default:
		return fmt.Sprintf("weightmode(%d)", int(m))
	}
}

// ParseWeightMode parses "none", "sqrt", "sqrt-pos", "row" or "full". An
// empty string is "none".
func ParseWeightMode(s string) (WeightMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return WeightNone, nil
	case "sqrt":
		return WeightSqrt, nil
	case "sqrt-pos":
		return WeightSqrtPos, nil
	case "row":
		return WeightRow, nil
	case "full":
		return WeightFull, nil
	default:
		return 0, fmt.Errorf("preprocess: unknown weight mode %q", s)
	}
}

// maxFrequency keeps 1/(1-f) finite for labels present in every row.
const maxFrequency = 1 - 1e-6

// Weights are per-class loss weights for positive and negative targets.
type Weights struct {
	Positive []float32
	Negative []float32
}

// ComputeWeights derives class weights from the label matrix Y. The frequency
// of class c is the mean of column c clamped to [2/rows, 1), the positive
// weight is 1/frequency and the negative weight 1/(1-frequency) before mode
// normalization.
func ComputeWeights(Y *csr.Matrix, mode WeightMode) (*Weights, error) {
	rows := Y.Rows()
	if rows == 0 {
		return nil, fmt.Errorf("%w: label matrix has no rows", csr.ErrShapeMismatch)
	}

	freq := Y.ColumnSums()
	floats.Scale(1/float64(rows), freq)

	lo := min(2/float64(rows), maxFrequency)
	pos := make([]float64, len(freq))
	neg := make([]float64, len(freq))
	for c, f := range freq {
		f = min(max(f, lo), maxFrequency)
		pos[c] = 1 / f
		neg[c] = 1 / (1 - f)
	}

	switch mode {
	case WeightNone:
	case WeightSqrt:
		sqrtInPlace(pos)
		sqrtInPlace(neg)
	case WeightSqrtPos:
		sqrtInPlace(pos)
	case WeightRow:
		summed := floats.AddTo(make([]float64, len(pos)), pos, neg)
		floats.Div(pos, summed)
		floats.Div(neg, summed)
	case WeightFull:
		if len(pos) > 0 {
			total := floats.Sum(pos) + floats.Sum(neg)
			floats.Scale(1/total, pos)
			floats.Scale(1/total, neg)
		}
	default:
		return nil, fmt.Errorf("preprocess: unknown weight mode %d", int(mode))
	}

	return &Weights{Positive: toFloat32(pos), Negative: toFloat32(neg)}, nil
}

func sqrtInPlace(v []float64) {
	for i, x := range v {
		v[i] = math.Sqrt(x)
	}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// ForExample returns y*Positive + (1-y)*Negative for a dense label row,
// writing into dst when it is large enough.
func (w *Weights) ForExample(y, dst []float32) []float32 {
	if cap(dst) < len(y) {
		dst = make([]float32, len(y))
	}
	dst = dst[:len(y)]
	for c, v := range y {
		dst[c] = v*w.Positive[c] + (1-v)*w.Negative[c]
	}
	return dst
}

// ForBatch returns the row-major [Size, NumLabels] loss weights of a batch
// with dense labels. Nonzero label entries count as positives, so scaled
// labels select the positive weight as well.
func (w *Weights) ForBatch(b *Batch) ([]float32, error) {
	if b.Labels == nil {
		return nil, fmt.Errorf("preprocess: batch has no dense labels")
	}
	if b.NumLabels != len(w.Positive) {
		return nil, fmt.Errorf("%w: batch has %d labels, weights have %d", csr.ErrShapeMismatch, b.NumLabels, len(w.Positive))
	}
	out := make([]float32, len(b.Labels))
	for i, v := range b.Labels {
		c := i % b.NumLabels
		if v != 0 {
			out[i] = w.Positive[c]
		} else {
			out[i] = w.Negative[c]
		}
	}
	return out, nil
}
