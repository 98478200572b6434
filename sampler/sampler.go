// Package sampler produces per-epoch iteration orders over dataset positions.
//
// Every call to Epoch or Indices starts a fresh epoch. Random samplers draw
// from a private seeded generator, so a sampler replays the same sequence of
// epochs for the same seed.
package sampler

import (
	"iter"
	"math/rand/v2"
	"sync"
)

// Sampler yields dataset positions in per-epoch order.
type Sampler interface {
	// Len returns the number of positions yielded per epoch.
	Len() int
	// Epoch computes the order of a new epoch.
	Epoch() []int
	// Indices iterates a new epoch.
	Indices() iter.Seq[int]
}

func seq(s Sampler) iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, i := range s.Epoch() {
			if !yield(i) {
				return
			}
		}
	}
}

type source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newSource(seed uint64) *source {
	return &source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *source) perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Perm(n)
}

// SequentialSampler yields 0..n-1 in order.
type SequentialSampler struct {
	n int
}

// Sequential returns a sampler over [0, n) in natural order.
func Sequential(n int) *SequentialSampler {
	return &SequentialSampler{n: max(n, 0)}
}

// Len implements Sampler.
func (s *SequentialSampler) Len() int { return s.n }

// Epoch implements Sampler.
func (s *SequentialSampler) Epoch() []int {
	out := make([]int, s.n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Indices implements Sampler.
func (s *SequentialSampler) Indices() iter.Seq[int] { return seq(s) }

// RandomSampler yields a full permutation of [0, n) per epoch.
type RandomSampler struct {
	n   int
	src *source
}

// Random returns a sampler drawing a fresh permutation each epoch.
func Random(n int, seed uint64) *RandomSampler {
	return &RandomSampler{n: max(n, 0), src: newSource(seed)}
}

// Len implements Sampler.
func (s *RandomSampler) Len() int { return s.n }

// Epoch implements Sampler.
func (s *RandomSampler) Epoch() []int { return s.src.perm(s.n) }

// Indices implements Sampler.
func (s *RandomSampler) Indices() iter.Seq[int] { return seq(s) }

// LocallySequentialSampler shuffles contiguous windows of positions. Within a
// window positions are yielded in order. A tail shorter than one window is
// never yielded.
type LocallySequentialSampler struct {
	n, window int
	src       *source
}

// LocallySequential returns a windowed sampler over [0, n). A window below 1
// is treated as 1.
func LocallySequential(n, window int, seed uint64) *LocallySequentialSampler {
	return &LocallySequentialSampler{n: max(n, 0), window: max(window, 1), src: newSource(seed)}
}

// Steps returns the number of windows per epoch.
func (s *LocallySequentialSampler) Steps() int { return s.n / s.window }

// Window returns the window size.
func (s *LocallySequentialSampler) Window() int { return s.window }

// Len implements Sampler.
func (s *LocallySequentialSampler) Len() int { return s.Steps() * s.window }

// Epoch implements Sampler.
func (s *LocallySequentialSampler) Epoch() []int {
	out := make([]int, 0, s.Len())
	for _, w := range s.src.perm(s.Steps()) {
		start := w * s.window
		for i := start; i < start+s.window; i++ {
			out = append(out, i)
		}
	}
	return out
}

// Indices implements Sampler.
func (s *LocallySequentialSampler) Indices() iter.Seq[int] { return seq(s) }

// Batches cuts an epoch order into consecutive batches of size positions.
// The last batch may be shorter unless dropLast is set.
func Batches(order []int, size int, dropLast bool) [][]int {
	if size <= 0 {
		return nil
	}
	out := make([][]int, 0, (len(order)+size-1)/size)
	for start := 0; start < len(order); start += size {
		end := min(start+size, len(order))
		if end-start < size && dropLast {
			break
		}
		out = append(out, order[start:end:end])
	}
	return out
}

var (
	_ Sampler = (*SequentialSampler)(nil)
	_ Sampler = (*RandomSampler)(nil)
	_ Sampler = (*LocallySequentialSampler)(nil)
)
