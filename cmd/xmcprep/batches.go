package main

import (
	"fmt"
	"time"

	"github.com/hupe1980/xmcdata/dataset"
	"github.com/hupe1980/xmcdata/loader"
	"github.com/hupe1980/xmcdata/preprocess"
	"github.com/hupe1980/xmcdata/sampler"
	"github.com/spf13/cobra"
)

func newBatchesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Dry-run the batch loader and report padding efficiency",
		Long: `Load --split, build batches exactly as training would and report how
many index slots hold real features. Sorting rows by length and the local
sampler reduce padding for the padded layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBatches(cmd)
		},
	}

	f := cmd.Flags()
	d := a.flags.Loader
	f.IntVar(&a.flags.Loader.BatchSize, "batch-size", d.BatchSize, "examples per batch")
	f.IntVar(&a.flags.Loader.Workers, "workers", 0, "collation workers (0 = GOMAXPROCS)")
	f.IntVar(&a.flags.Loader.Prefetch, "prefetch", 0, "batches collated ahead (0 = twice the workers)")
	f.StringVar(&a.flags.Loader.Sampler, "sampler", d.Sampler, "sequential, random or local")
	f.IntVar(&a.flags.Loader.Window, "window", d.Window, "window size of the local sampler")
	f.Uint64Var(&a.flags.Loader.Seed, "seed", 0, "seed for sampling and subsampling")
	f.BoolVar(&a.flags.Loader.Sort, "sort", false, "order rows by feature count")
	f.BoolVar(&a.flags.Loader.DropLast, "drop-last", false, "drop a trailing partial batch")
	f.IntVar(&a.flags.Loader.Epochs, "epochs", d.Epochs, "epochs to run")
	f.Int64Var(&a.flags.Loader.MemoryLimit, "memory-limit", 0, "bytes of batches held ahead of the consumer (0 = unlimited)")
	f.BoolVar(&a.flags.Preprocess.UseBag, "bag", false, "use the bag layout")
	f.IntVar(&a.flags.Preprocess.Subsample, "subsample", 0, "features kept per example (0 = all)")
	f.BoolVar(&a.flags.Preprocess.SampleSingleLabel, "single-label", false, "draw one label per example")
	return cmd
}

func newSampler(cfg LoaderConfig, n int) (sampler.Sampler, error) {
	switch cfg.Sampler {
	case "sequential":
		return sampler.Sequential(n), nil
	case "", "random":
		return sampler.Random(n, cfg.Seed), nil
	case "local":
		return sampler.LocallySequential(n, cfg.Window, cfg.Seed), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q", cfg.Sampler)
	}
}

func (a *app) runBatches(cmd *cobra.Command) error {
	ctx := cmd.Context()
	data, err := a.load(ctx, cmd)
	if err != nil {
		return err
	}

	var dsOpts []dataset.Option
	if a.cfg.Loader.Sort {
		dsOpts = append(dsOpts, dataset.WithSorted())
	}
	ds, err := dataset.New(data.X, data.Y, dsOpts...)
	if err != nil {
		return err
	}
	smp, err := newSampler(a.cfg.Loader, ds.Len())
	if err != nil {
		return err
	}
	pre, err := preprocess.New(ds.Labels(), a.cfg.Preprocess)
	if err != nil {
		return err
	}

	lc := a.cfg.Loader
	l := loader.New(ds, smp, pre,
		loader.WithBatchSize(lc.BatchSize),
		loader.WithWorkers(lc.Workers),
		loader.WithPrefetch(lc.Prefetch),
		loader.WithSeed(lc.Seed),
		loader.WithDropLast(lc.DropLast),
		loader.WithMemoryLimit(lc.MemoryLimit),
	)

	out := cmd.OutOrStdout()
	start := time.Now()
	for epoch := 1; epoch <= lc.Epochs; epoch++ {
		first := true
		for b, err := range l.Epoch(ctx) {
			if err != nil {
				return fmt.Errorf("epoch %d: %w", epoch, err)
			}
			if epoch == 1 && first {
				if err := describeBatch(cmd, b); err != nil {
					return err
				}
				first = false
			}
		}
	}

	s := l.Stats()
	fmt.Fprintf(out, "%d epochs, %d batches, %d examples in %s\n",
		s.Epochs, s.Batches, s.Examples, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "layout %s, efficiency %.1f%% (%d of %d slots)\n",
		pre.Layout(), 100*s.Efficiency(), s.UsedCells, s.Cells)
	fmt.Fprintf(out, "peak in-flight estimate %d bytes\n", s.PeakMemory)
	return nil
}

// describeBatch prints the tensor shapes of the first batch.
func describeBatch(cmd *cobra.Command, b *preprocess.Batch) error {
	t, err := b.Tensors()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "first batch: indices %v", t.Indices.Shape().Dimensions)
	if t.Weights != nil {
		fmt.Fprintf(out, ", weights %v", t.Weights.Shape().Dimensions)
	}
	if t.Offsets != nil {
		fmt.Fprintf(out, ", offsets %v", t.Offsets.Shape().Dimensions)
	}
	fmt.Fprintf(out, ", labels %v\n", t.Labels.Shape().Dimensions)
	return nil
}
