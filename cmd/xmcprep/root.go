package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/xmcdata"
	"github.com/hupe1980/xmcdata/trim"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app carries the resolved configuration into the subcommands.
type app struct {
	configPath string
	flags      Config
	cfg        Config
	logger     *xmcdata.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{flags: DefaultConfig()}

	root := &cobra.Command{
		Use:   "xmcprep",
		Short: "Prepare sparse multi-label datasets for training",
		Long: `xmcprep parses sparse multi-label text datasets, trims rare features
and labels, and caches the result next to the source.

Settings come from --config (YAML) and are overridden by flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.flags.Dir, "dir", a.flags.Dir, "dataset directory")
	pf.StringVar(&a.flags.Split, "split", a.flags.Split, "dataset split, e.g. train or test")
	pf.StringVar(&a.flags.Source, "source", "", "source text file (default {dir}/{split}.txt)")
	pf.StringVar(&a.flags.LogLevel, "log-level", a.flags.LogLevel, "debug, info, warn or error")
	pf.StringVar(&a.flags.LogFormat, "log-format", a.flags.LogFormat, "text or json")
	pf.StringVar(&a.flags.Store.Kind, "store", a.flags.Store.Kind, "cache store: local, s3 or minio")
	pf.StringVar(&a.flags.Store.Bucket, "bucket", "", "bucket of a remote store")
	pf.StringVar(&a.flags.Store.Prefix, "prefix", "", "key prefix of a remote store")
	pf.Int64Var(&a.flags.IOLimit, "io-limit", 0, "cache transfer limit in bytes per second (0 = unlimited)")

	root.AddCommand(
		newPrepareCmd(a),
		newInspectCmd(a),
		newWeightsCmd(a),
		newBatchesCmd(a),
	)
	return root
}

// overrides maps flag names to the fields they set.
var overrides = map[string]func(dst *Config, src Config){
	"dir":          func(d *Config, s Config) { d.Dir = s.Dir },
	"split":        func(d *Config, s Config) { d.Split = s.Split },
	"source":       func(d *Config, s Config) { d.Source = s.Source },
	"log-level":    func(d *Config, s Config) { d.LogLevel = s.LogLevel },
	"log-format":   func(d *Config, s Config) { d.LogFormat = s.LogFormat },
	"store":        func(d *Config, s Config) { d.Store.Kind = s.Store.Kind },
	"bucket":       func(d *Config, s Config) { d.Store.Bucket = s.Store.Bucket },
	"prefix":       func(d *Config, s Config) { d.Store.Prefix = s.Store.Prefix },
	"io-limit":     func(d *Config, s Config) { d.IOLimit = s.IOLimit },
	"force":        func(d *Config, s Config) { d.Force = s.Force },
	"min-words":    func(d *Config, s Config) { d.MinWords = s.MinWords },
	"min-labels":   func(d *Config, s Config) { d.MinLabels = s.MinLabels },
	"masks-from":   func(d *Config, s Config) { d.MasksFrom = s.MasksFrom },
	"compression":  func(d *Config, s Config) { d.Compression = s.Compression },
	"run-dir":      func(d *Config, s Config) { d.RunDir = s.RunDir },
	"mode":         func(d *Config, s Config) { d.Weights = s.Weights },
	"batch-size":   func(d *Config, s Config) { d.Loader.BatchSize = s.Loader.BatchSize },
	"workers":      func(d *Config, s Config) { d.Loader.Workers = s.Loader.Workers },
	"prefetch":     func(d *Config, s Config) { d.Loader.Prefetch = s.Loader.Prefetch },
	"sampler":      func(d *Config, s Config) { d.Loader.Sampler = s.Loader.Sampler },
	"window":       func(d *Config, s Config) { d.Loader.Window = s.Loader.Window },
	"seed":         func(d *Config, s Config) { d.Loader.Seed = s.Loader.Seed },
	"sort":         func(d *Config, s Config) { d.Loader.Sort = s.Loader.Sort },
	"drop-last":    func(d *Config, s Config) { d.Loader.DropLast = s.Loader.DropLast },
	"epochs":       func(d *Config, s Config) { d.Loader.Epochs = s.Loader.Epochs },
	"memory-limit": func(d *Config, s Config) { d.Loader.MemoryLimit = s.Loader.MemoryLimit },
	"bag":          func(d *Config, s Config) { d.Preprocess.UseBag = s.Preprocess.UseBag },
	"subsample":    func(d *Config, s Config) { d.Preprocess.Subsample = s.Preprocess.Subsample },
	"single-label": func(d *Config, s Config) { d.Preprocess.SampleSingleLabel = s.Preprocess.SampleSingleLabel },
}

// resolve layers the config file and the changed flags over the defaults.
func (a *app) resolve(flags *pflag.FlagSet) error {
	cfg := DefaultConfig()
	if a.configPath != "" {
		loaded, err := LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags.Visit(func(f *pflag.Flag) {
		if set, ok := overrides[f.Name]; ok {
			set(&cfg, a.flags)
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// load runs xmcdata.Load with the resolved settings.
func (a *app) load(ctx context.Context, cmd *cobra.Command, extra ...xmcdata.Option) (*xmcdata.Data, error) {
	store, err := a.cfg.openStore(ctx)
	if err != nil {
		return nil, err
	}
	logger := a.cfg.newLogger(cmd.ErrOrStderr())
	opts := a.cfg.loadOptions(store, logger)

	if a.cfg.MasksFrom != "" {
		refOpts := append(a.cfg.loadOptions(store, logger), xmcdata.WithForce(false))
		ref, err := xmcdata.Load(ctx, a.cfg.Dir, a.cfg.MasksFrom, refOpts...)
		if err != nil {
			return nil, fmt.Errorf("masks from %s: %w", a.cfg.MasksFrom, err)
		}
		if ref.FeatureMask == nil || ref.LabelMask == nil {
			return nil, fmt.Errorf("masks from %s: cache holds no masks", a.cfg.MasksFrom)
		}
		opts = append(opts, xmcdata.WithMasks(ref.FeatureMask, ref.LabelMask))
	}
	return xmcdata.Load(ctx, a.cfg.Dir, a.cfg.Split, append(opts, extra...)...)
}

func describeMask(m *trim.Mask) string {
	if m == nil {
		return "none"
	}
	return fmt.Sprintf("%d of %d kept", m.Count(), m.Len())
}
