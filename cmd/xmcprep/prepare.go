package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/xmcdata"
	"github.com/hupe1980/xmcdata/codec"
	"github.com/hupe1980/xmcdata/internal/fs"
	"github.com/hupe1980/xmcdata/runid"
	"github.com/spf13/cobra"
)

// report is written to the run directory after a prepare run.
type report struct {
	Run         int                       `json:"run"`
	Split       string                    `json:"split"`
	Rows        int                       `json:"rows"`
	FeatureCols int                       `json:"feature_cols"`
	LabelCols   int                       `json:"label_cols"`
	FeatureNNZ  int                       `json:"feature_nnz"`
	LabelNNZ    int                       `json:"label_nnz"`
	FromCache   bool                      `json:"from_cache"`
	Duration    time.Duration             `json:"duration_ns"`
	Metrics     xmcdata.BasicMetricsStats `json:"metrics"`
}

func newPrepareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Parse, trim and cache a split",
		Long: `Parse {dir}/{split}.txt, drop features and labels below the thresholds,
drop rows left without features or labels, and cache the result.

An existing cache is reused unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPrepare(cmd)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&a.flags.Force, "force", false, "rebuild the cache from the source text")
	f.IntVar(&a.flags.MinWords, "min-words", 1, "minimum number of rows a feature must occur in")
	f.IntVar(&a.flags.MinLabels, "min-labels", 1, "minimum number of rows a label must occur in")
	f.StringVar(&a.flags.MasksFrom, "masks-from", "", "reuse the column masks of another prepared split")
	f.StringVar(&a.flags.Compression, "compression", a.flags.Compression, "cache compression: none, lz4 or zstd")
	f.StringVar(&a.flags.RunDir, "run-dir", "", "write a numbered report directory here")
	return cmd
}

func (a *app) runPrepare(cmd *cobra.Command) error {
	ctx := cmd.Context()
	metrics := &xmcdata.BasicMetricsCollector{}

	start := time.Now()
	data, err := a.load(ctx, cmd, xmcdata.WithMetricsCollector(metrics))
	if err != nil {
		return err
	}

	rep := report{
		Split:       a.cfg.Split,
		Rows:        data.X.Rows(),
		FeatureCols: data.X.Cols(),
		LabelCols:   data.Y.Cols(),
		FeatureNNZ:  data.X.NNZ(),
		LabelNNZ:    data.Y.NNZ(),
		FromCache:   data.FromCache,
		Duration:    time.Since(start),
		Metrics:     metrics.GetStats(),
	}

	out := cmd.OutOrStdout()
	state := "built"
	if data.FromCache {
		state = "cached"
	}
	fmt.Fprintf(out, "%s: %d rows, %d features, %d labels (%s)\n",
		a.cfg.Split, rep.Rows, rep.FeatureCols, rep.LabelCols, state)
	fmt.Fprintf(out, "feature mask: %s\nlabel mask: %s\n",
		describeMask(data.FeatureMask), describeMask(data.LabelMask))

	if a.cfg.RunDir == "" {
		return nil
	}
	dir, err := writeReport(a.cfg.RunDir, &rep)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "report: %s\n", dir)
	return nil
}

// writeReport numbers the run and stores rep as prepare.json in its directory.
func writeReport(runDir string, rep *report) (string, error) {
	n, err := runid.New(filepath.Join(runDir, "last_run")).Next()
	if err != nil {
		return "", err
	}
	rep.Run = n

	dir := filepath.Join(runDir, runid.Label(n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	raw, err := codec.Default.Marshal(rep)
	if err != nil {
		return "", err
	}
	err = fs.WriteAtomic(nil, filepath.Join(dir, "prepare.json"), func(w io.Writer) error {
		_, err := w.Write(append(raw, '\n'))
		return err
	})
	return dir, err
}
