package preprocess

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/xmcdata/dataset"
)

// Features is a transformed feature sequence. Weights is nil in the bag
// layout, where repetition carries the weight.
type Features struct {
	Indices []uint32
	Weights []float32
}

// Target is a transformed label set. Dense is nil when a single label is
// sampled.
type Target struct {
	Dense []float32
	ID    uint32
}

// Preprocessor holds the label count and an immutable Config.
type Preprocessor struct {
	labels int
	cfg    Config
}

// New creates a Preprocessor for nLabels classes.
func New(nLabels int, cfg Config) (*Preprocessor, error) {
	if nLabels <= 0 {
		return nil, fmt.Errorf("%w: label count must be positive, got %d", ErrInvalidConfig, nLabels)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Preprocessor{labels: nLabels, cfg: cfg}, nil
}

// Config returns the configuration.
func (p *Preprocessor) Config() Config { return p.cfg }

// Labels returns the number of label classes.
func (p *Preprocessor) Labels() int { return p.labels }

// Layout returns the batch layout Collate produces.
func (p *Preprocessor) Layout() Layout { return p.cfg.Layout() }

// XTransform applies subsampling, weight scaling and bagging to the features
// of s. r is only used when subsampling.
func (p *Preprocessor) XTransform(r *rand.Rand, s dataset.Sample) (Features, error) {
	if len(s.Indices) == 0 {
		return Features{}, fmt.Errorf("%w: no features", ErrEmptyExample)
	}
	if len(s.Indices) != len(s.Weights) {
		return Features{}, fmt.Errorf("preprocess: %d indices but %d weights", len(s.Indices), len(s.Weights))
	}

	indices := slices.Clone(s.Indices)
	weights := slices.Clone(s.Weights)

	if k := p.cfg.Subsample; k > 0 && len(indices) > k {
		// keep the drawn positions in their original order
		pos := r.Perm(len(indices))[:k]
		slices.Sort(pos)
		for i, j := range pos {
			indices[i] = indices[j]
			weights[i] = weights[j]
		}
		indices, weights = indices[:k], weights[:k]
	}

	if p.cfg.LogTransform {
		for i, w := range weights {
			weights[i] = float32(math.Log1p(float64(w)))
		}
	}
	if p.cfg.SqrtTransform {
		for i, w := range weights {
			weights[i] = float32(math.Sqrt(float64(max(w, 0))))
		}
	}

	if !p.cfg.UseBag {
		return Features{Indices: indices, Weights: weights}, nil
	}

	bag := make([]uint32, 0, len(indices))
	for i, idx := range indices {
		n := repeatCount(weights[i], p.cfg.MaxRepeat)
		for range n {
			bag = append(bag, idx)
		}
	}
	return Features{Indices: bag}, nil
}

func repeatCount(w float32, maxRepeat int) int {
	r := math.RoundToEven(float64(w))
	switch {
	case math.IsNaN(r) || r < 1:
		return 1
	case r > float64(maxRepeat):
		return maxRepeat
	default:
		return int(r)
	}
}

// YTransform turns a label set into a dense weight vector or, with
// SampleSingleLabel, into one label drawn from the set.
func (p *Preprocessor) YTransform(r *rand.Rand, labels []uint32) (Target, error) {
	if len(labels) == 0 {
		return Target{}, fmt.Errorf("%w: no labels", ErrEmptyExample)
	}
	for _, l := range labels {
		if int(l) >= p.labels {
			return Target{}, fmt.Errorf("preprocess: label %d out of range [0, %d)", l, p.labels)
		}
	}

	if p.cfg.SampleSingleLabel {
		return Target{ID: labels[r.IntN(len(labels))]}, nil
	}

	value := float32(1)
	if p.cfg.ScaleY {
		value = 1 / float32(len(labels))
	}
	dense := make([]float32, p.labels)
	for _, l := range labels {
		dense[l] = value
	}
	return Target{Dense: dense}, nil
}
