package trim

import (
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/xmcdata/csr"
)

// Mask is a fixed-length selection of positions. The zero value is an empty
// mask of length zero.
type Mask struct {
	n  int
	rb *roaring.Bitmap
}

// NewMask returns a mask of length n with the given positions kept.
// Positions outside [0, n) are ignored.
func NewMask(n int, kept ...uint32) *Mask {
	m := &Mask{n: n, rb: roaring.New()}
	for _, i := range kept {
		if int(i) < n {
			m.rb.Add(i)
		}
	}
	return m
}

// All returns a mask of length n that keeps every position.
func All(n int) *Mask {
	m := &Mask{n: n, rb: roaring.New()}
	if n > 0 {
		m.rb.AddRange(0, uint64(n))
	}
	return m
}

// FromBools builds a mask from a boolean slice.
func FromBools(keep []bool) *Mask {
	m := &Mask{n: len(keep), rb: roaring.New()}
	for i, ok := range keep {
		if ok {
			m.rb.Add(uint32(i))
		}
	}
	return m
}

func (m *Mask) bitmap() *roaring.Bitmap {
	if m.rb == nil {
		m.rb = roaring.New()
	}
	return m.rb
}

// Len returns the number of positions the mask covers.
func (m *Mask) Len() int { return m.n }

// Count returns the number of kept positions.
func (m *Mask) Count() int { return int(m.bitmap().GetCardinality()) }

// Contains reports whether position i is kept.
func (m *Mask) Contains(i int) bool {
	if i < 0 || i >= m.n {
		return false
	}
	return m.bitmap().Contains(uint32(i))
}

// Bools expands the mask into one boolean per position.
func (m *Mask) Bools() []bool {
	out := make([]bool, m.n)
	it := m.bitmap().Iterator()
	for it.HasNext() {
		out[it.Next()] = true
	}
	return out
}

// Kept iterates the kept positions in ascending order.
func (m *Mask) Kept() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := m.bitmap().Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// And returns the intersection of two masks of equal length.
func (m *Mask) And(o *Mask) (*Mask, error) {
	if m.n != o.n {
		return nil, fmt.Errorf("%w: masks of length %d and %d", csr.ErrShapeMismatch, m.n, o.n)
	}
	return &Mask{n: m.n, rb: roaring.And(m.bitmap(), o.bitmap())}, nil
}

// IsSupersetOf reports whether every position kept by o is kept by m.
func (m *Mask) IsSupersetOf(o *Mask) bool {
	if m.n != o.n {
		return false
	}
	return o.bitmap().AndCardinality(m.bitmap()) == o.bitmap().GetCardinality()
}

// Equal reports whether both masks have the same length and kept positions.
func (m *Mask) Equal(o *Mask) bool {
	return m.n == o.n && m.bitmap().Equals(o.bitmap())
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	return &Mask{n: m.n, rb: m.bitmap().Clone()}
}

func (m *Mask) String() string {
	return fmt.Sprintf("Mask(%d/%d)", m.Count(), m.n)
}
