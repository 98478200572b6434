package loader

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"
	"sync/atomic"

	"github.com/hupe1980/xmcdata/dataset"
	"github.com/hupe1980/xmcdata/internal/resource"
	"github.com/hupe1980/xmcdata/preprocess"
	"github.com/hupe1980/xmcdata/sampler"
	"golang.org/x/sync/errgroup"
)

// Loader combines a dataset, a sampler and a preprocessor.
type Loader struct {
	ds      *dataset.Dataset
	sampler sampler.Sampler
	pre     *preprocess.Preprocessor
	opts    options

	epoch atomic.Uint64
	stats counters
}

// New creates a Loader. The sampler must range over [0, ds.Len()).
func New(ds *dataset.Dataset, smp sampler.Sampler, pre *preprocess.Preprocessor, optFns ...Option) *Loader {
	return &Loader{
		ds:      ds,
		sampler: smp,
		pre:     pre,
		opts:    applyOptions(optFns),
	}
}

// Batches returns the number of batches per epoch.
func (l *Loader) Batches() int {
	n, size := l.sampler.Len(), l.opts.batchSize
	if l.opts.dropLast {
		return n / size
	}
	return (n + size - 1) / size
}

type result struct {
	batch *preprocess.Batch
	err   error
}

// Epoch iterates the batches of a new epoch in schedule order. The first
// error ends the iteration.
func (l *Loader) Epoch(ctx context.Context) iter.Seq2[*preprocess.Batch, error] {
	return func(yield func(*preprocess.Batch, error) bool) {
		epoch := l.epoch.Add(1)
		schedule := sampler.Batches(l.sampler.Epoch(), l.opts.batchSize, l.opts.dropLast)
		if len(schedule) == 0 {
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Budgets are scoped to one epoch.
		rc := resource.NewController(resource.Config{
			MaxWorkers:       int64(l.opts.workers),
			MemoryLimitBytes: l.opts.memoryLimit,
		})

		slots := make([]chan result, len(schedule))
		for k := range slots {
			slots[k] = make(chan result, 1)
		}
		sizes := make([]int64, len(schedule))
		tokens := make(chan struct{}, l.opts.prefetch)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			for k, positions := range schedule {
				if err := gctx.Err(); err != nil {
					return err
				}
				select {
				case tokens <- struct{}{}:
				case <-gctx.Done():
					return gctx.Err()
				}
				sizes[k] = l.estimate(positions)
				if err := rc.AcquireMemory(gctx, sizes[k]); err != nil {
					return err
				}
				l.stats.observeMemory(rc.MemoryUsage())
				if err := rc.AcquireWorker(gctx); err != nil {
					rc.ReleaseMemory(sizes[k])
					return err
				}
				g.Go(func() error {
					defer rc.ReleaseWorker()
					b, err := l.collate(epoch, k, positions)
					slots[k] <- result{batch: b, err: err}
					return err
				})
			}
			return nil
		})

		// stop cancels outstanding work and waits for it.
		stop := func() error {
			cancel()
			return g.Wait()
		}

		for k := range schedule {
			if err := ctx.Err(); err != nil {
				_ = stop()
				yield(nil, err)
				return
			}

			var res result
			select {
			case res = <-slots[k]:
			case <-gctx.Done():
				err := stop()
				if err == nil {
					err = ctx.Err()
				}
				yield(nil, err)
				return
			}

			<-tokens
			rc.ReleaseMemory(sizes[k])
			if res.err != nil {
				_ = stop()
				yield(nil, res.err)
				return
			}

			l.stats.record(res.batch)
			if !yield(res.batch, nil) {
				_ = stop()
				return
			}
		}
		if err := g.Wait(); err != nil {
			yield(nil, err)
			return
		}
		l.stats.epochs.Add(1)
	}
}

func (l *Loader) collate(epoch uint64, k int, positions []int) (*preprocess.Batch, error) {
	samples := make([]dataset.Sample, len(positions))
	for i, pos := range positions {
		s, err := l.ds.Get(pos)
		if err != nil {
			return nil, fmt.Errorf("loader: batch %d: %w", k, err)
		}
		samples[i] = s
	}

	r := rand.New(rand.NewPCG(l.opts.seed^epoch, uint64(k)))
	b, err := l.pre.Collate(r, samples)
	if err != nil {
		return nil, fmt.Errorf("loader: batch %d: %w", k, err)
	}
	b.Positions = positions
	return b, nil
}

// estimate bounds the bytes of the batch collated from positions.
func (l *Loader) estimate(positions []int) int64 {
	cfg := l.pre.Config()
	maxLen, total := 0, 0
	for _, pos := range positions {
		if pos < 0 || pos >= l.ds.Len() {
			continue
		}
		n := l.ds.RowLen(pos)
		if cfg.Subsample > 0 {
			n = min(n, cfg.Subsample)
		}
		if cfg.UseBag {
			n *= cfg.MaxRepeat
		}
		maxLen = max(maxLen, n)
		total += n
	}

	size := int64(len(positions))
	var bytes int64
	if cfg.UseBag {
		bytes = int64(total)*8 + size*8
	} else {
		bytes = size * int64(maxLen) * (8 + 4)
	}
	if cfg.SampleSingleLabel {
		bytes += size * 8
	} else {
		bytes += size * int64(l.pre.Labels()) * 4
	}
	return bytes
}
