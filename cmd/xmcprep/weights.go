package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/hupe1980/xmcdata/preprocess"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

func newWeightsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Summarize per-label class weights",
		Long: `Compute positive and negative class weights from the label matrix of
--split and print their range. Modes: none, sqrt, sqrt-pos, row, full.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWeights(cmd)
		},
	}
	cmd.Flags().StringVar(&a.flags.Weights, "mode", a.flags.Weights, "weighting mode")
	return cmd
}

func (a *app) runWeights(cmd *cobra.Command) error {
	mode, err := preprocess.ParseWeightMode(a.cfg.Weights)
	if err != nil {
		return err
	}
	data, err := a.load(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	w, err := preprocess.ComputeWeights(data.Y, mode)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mode %s over %d rows and %d labels\n", mode, data.Y.Rows(), data.Y.Cols())
	if len(w.Positive) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tMIN\tMEAN\tMAX")
	for _, row := range []struct {
		name string
		v    []float32
	}{
		{"positive", w.Positive},
		{"negative", w.Negative},
	} {
		v := widen(row.v)
		fmt.Fprintf(tw, "%s\t%.4g\t%.4g\t%.4g\n",
			row.name, floats.Min(v), floats.Sum(v)/float64(len(v)), floats.Max(v))
	}
	return tw.Flush()
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
