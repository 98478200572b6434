package testutil

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/xmcdata/csr"
)

// Fixture is the small dataset used across package tests.
const Fixture = `4 5 4
0,1 0:1.1 2:1.7
0 0:1.2 1:1.3
1,2 3:1.4
3 1:1.5 2:1.6
`

// RNG wraps math/rand with a mutex and remembers its seed.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewRNG creates an RNG with the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 { return r.seed }

// Reset restarts the sequence from the initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Intn returns a number in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns a number in [0, 1).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Perm returns a random permutation of [0, n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// sample draws k distinct sorted values from [0, n).
func (r *RNG) sample(n, k int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.rand.Perm(n)[:k]
	out := make([]uint32, k)
	for i, v := range idx {
		out[i] = uint32(v)
	}
	slices.Sort(out)
	return out
}

// RandomCSR returns a canonical rows x cols matrix in which each entry is
// present with probability density. Values are in (0, 10].
func RandomCSR(r *RNG, rows, cols int, density float64) *csr.Matrix {
	b := csr.NewBuilder(cols)
	for i := 0; i < rows; i++ {
		var idx []uint32
		var val []float32
		for c := 0; c < cols; c++ {
			if float64(r.Float32()) < density {
				idx = append(idx, uint32(c))
				val = append(val, 10-9.99*r.Float32())
			}
		}
		if err := b.AppendRow(idx, val); err != nil {
			panic(err)
		}
	}
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// RandomLabels returns a rows x labels indicator matrix with 1..maxPerRow
// labels per row.
func RandomLabels(r *RNG, rows, labels, maxPerRow int) *csr.Matrix {
	maxPerRow = min(maxPerRow, labels)
	b := csr.NewBuilder(labels)
	for i := 0; i < rows; i++ {
		k := 1 + r.Intn(maxPerRow)
		if err := b.AppendRow(r.sample(labels, k), nil); err != nil {
			panic(err)
		}
	}
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

// FormatLibSVM renders X and Y in the dataset text format. Rows with no
// labels or features are written anyway and will be skipped by the parser.
func FormatLibSVM(X, Y *csr.Matrix) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d %d\n", X.Rows(), X.Cols(), Y.Cols())
	for i := 0; i < X.Rows(); i++ {
		labels, _ := Y.Row(i)
		for k, l := range labels {
			if k > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(uint64(l), 10))
		}
		cols, vals := X.Row(i)
		for k, c := range cols {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatUint(uint64(c), 10))
			sb.WriteByte(':')
			sb.WriteString(strconv.FormatFloat(float64(vals[k]), 'g', -1, 32))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
