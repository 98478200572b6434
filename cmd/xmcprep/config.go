package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/xmcdata"
	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/blobstore/minio"
	"github.com/hupe1980/xmcdata/blobstore/s3"
	"github.com/hupe1980/xmcdata/internal/resource"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/preprocess"
	"gopkg.in/yaml.v3"
)

// Config is the file form of every command's settings. Flags override it.
type Config struct {
	Dir    string `yaml:"dir"`
	Split  string `yaml:"split"`
	Source string `yaml:"source"`
	Force  bool   `yaml:"force"`

	MinWords  int `yaml:"min_words"`
	MinLabels int `yaml:"min_labels"`
	// MasksFrom names a prepared split whose column masks are reused.
	MasksFrom string `yaml:"masks_from"`

	Compression string `yaml:"compression"`
	// IOLimit throttles cache reads and writes in bytes per second.
	IOLimit int64 `yaml:"io_limit"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// RunDir, when set, receives a numbered report directory per prepare run.
	RunDir string `yaml:"run_dir"`

	Store      StoreConfig       `yaml:"store"`
	Preprocess preprocess.Config `yaml:"preprocess"`
	Loader     LoaderConfig      `yaml:"loader"`
	Weights    string            `yaml:"weights"`
}

// StoreConfig selects where cache files live.
type StoreConfig struct {
	// Kind is one of local, s3 or minio.
	Kind      string `yaml:"kind"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
	// Mirror keeps a local copy of remote caches under Dir.
	Mirror bool `yaml:"mirror"`
}

// LoaderConfig configures the batches dry run.
type LoaderConfig struct {
	BatchSize int `yaml:"batch_size"`
	Workers   int `yaml:"workers"`
	Prefetch  int `yaml:"prefetch"`
	// Sampler is one of sequential, random or local.
	Sampler  string `yaml:"sampler"`
	Window   int    `yaml:"window"`
	Seed     uint64 `yaml:"seed"`
	Sort     bool   `yaml:"sort"`
	DropLast bool   `yaml:"drop_last"`
	Epochs   int    `yaml:"epochs"`
	// MemoryLimit bounds bytes held by batches not yet consumed.
	MemoryLimit int64 `yaml:"memory_limit"`
}

// DefaultConfig returns the settings used when neither file nor flags say
// otherwise.
func DefaultConfig() Config {
	return Config{
		Dir:         ".",
		Split:       "train",
		MinWords:    1,
		MinLabels:   1,
		Compression: "lz4",
		LogLevel:    "info",
		LogFormat:   "text",
		Store:       StoreConfig{Kind: "local"},
		Preprocess:  preprocess.DefaultConfig(),
		Loader: LoaderConfig{
			BatchSize: 32,
			Sampler:   "random",
			Window:    1,
			Epochs:    1,
		},
		Weights: "sqrt",
	}
}

// LoadConfig reads path on top of DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that flags and files cannot constrain by type.
func (c Config) Validate() error {
	var errs []error
	if c.Split == "" {
		errs = append(errs, errors.New("split must not be empty"))
	}
	if c.MinWords < 0 || c.MinLabels < 0 {
		errs = append(errs, errors.New("thresholds must not be negative"))
	}
	if _, err := persistence.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch c.Store.Kind {
	case "", "local":
	case "s3", "minio":
		if c.Store.Bucket == "" {
			errs = append(errs, fmt.Errorf("store %s needs a bucket", c.Store.Kind))
		}
		if c.Store.Kind == "minio" && c.Store.Endpoint == "" {
			errs = append(errs, errors.New("store minio needs an endpoint"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	if err := c.Preprocess.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Loader.BatchSize < 1 {
		errs = append(errs, errors.New("loader batch_size must be positive"))
	}
	if c.Loader.Epochs < 1 {
		errs = append(errs, errors.New("loader epochs must be positive"))
	}
	if _, err := preprocess.ParseWeightMode(c.Weights); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// newLogger writes to w in the configured format.
func (c Config) newLogger(w io.Writer) *xmcdata.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return xmcdata.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return xmcdata.NewLogger(slog.NewTextHandler(w, opts))
}

// loadOptions translates the cache settings into Load options.
func (c Config) loadOptions(store blobstore.BlobStore, logger *xmcdata.Logger) []xmcdata.Option {
	comp, _ := persistence.ParseCompression(c.Compression)
	opts := []xmcdata.Option{
		xmcdata.WithForce(c.Force),
		xmcdata.WithMinWords(c.MinWords),
		xmcdata.WithMinLabels(c.MinLabels),
		xmcdata.WithCompression(comp),
		xmcdata.WithLogger(logger),
	}
	if c.Source != "" {
		opts = append(opts, xmcdata.WithSource(c.Source))
	}
	if store != nil {
		opts = append(opts, xmcdata.WithStore(store))
	}
	if c.IOLimit > 0 {
		rc := resource.NewController(resource.Config{IOLimitBytesPerSec: c.IOLimit})
		opts = append(opts, xmcdata.WithIOLimiter(rc))
	}
	return opts
}

// openStore returns nil for the local store so that Load roots it at Dir.
func (c Config) openStore(ctx context.Context) (blobstore.BlobStore, error) {
	var remote blobstore.BlobStore
	switch c.Store.Kind {
	case "", "local":
		return nil, nil
	case "s3":
		var opts []s3.Option
		if c.Store.Prefix != "" {
			opts = append(opts, s3.WithPrefix(c.Store.Prefix))
		}
		if c.Store.Region != "" {
			opts = append(opts, s3.WithRegion(c.Store.Region))
		}
		store, err := s3.New(ctx, c.Store.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		remote = store
	case "minio":
		client, err := minio.Dial(c.Store.Endpoint, c.Store.AccessKey, c.Store.SecretKey, c.Store.Secure)
		if err != nil {
			return nil, fmt.Errorf("minio store: %w", err)
		}
		remote = minio.NewStore(client, c.Store.Bucket, c.Store.Prefix)
	default:
		return nil, fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.Mirror {
		return blobstore.NewMirrorStore(remote, blobstore.NewLocalStore(c.Dir)), nil
	}
	return remote, nil
}
