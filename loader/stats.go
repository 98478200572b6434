package loader

import (
	"sync/atomic"

	"github.com/hupe1980/xmcdata/preprocess"
)

type counters struct {
	epochs    atomic.Int64
	batches   atomic.Int64
	examples  atomic.Int64
	cells     atomic.Int64
	usedCells atomic.Int64
	peakMem   atomic.Int64
}

func (c *counters) record(b *preprocess.Batch) {
	total, used := b.Cells()
	c.batches.Add(1)
	c.examples.Add(int64(b.Size))
	c.cells.Add(int64(total))
	c.usedCells.Add(int64(used))
}

func (c *counters) observeMemory(bytes int64) {
	for {
		peak := c.peakMem.Load()
		if bytes <= peak || c.peakMem.CompareAndSwap(peak, bytes) {
			return
		}
	}
}

// Stats summarizes the batches delivered so far.
type Stats struct {
	// Epochs counts epochs iterated to the end.
	Epochs   int64
	Batches  int64
	Examples int64
	// Cells counts index slots including padding; UsedCells excludes it.
	Cells     int64
	UsedCells int64
	// PeakMemory is the largest estimate of bytes held by undelivered batches.
	PeakMemory int64
}

// Efficiency returns the share of index slots holding real features.
func (s Stats) Efficiency() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.UsedCells) / float64(s.Cells)
}

// Stats returns a snapshot of the delivery counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Epochs:     l.stats.epochs.Load(),
		Batches:    l.stats.batches.Load(),
		Examples:   l.stats.examples.Load(),
		Cells:      l.stats.cells.Load(),
		UsedCells:  l.stats.usedCells.Load(),
		PeakMemory: l.stats.peakMem.Load(),
	}
}
