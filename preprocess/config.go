package preprocess

import "fmt"

// Config enumerates every transform toggle. It is set once and passed to New.
type Config struct {
	// ScaleY sets each label weight to 1/|labels| instead of 1.
	ScaleY bool `yaml:"scale_y" json:"scale_y"`
	// LogTransform replaces feature weights w with log(1+w).
	LogTransform bool `yaml:"log_transform" json:"log_transform"`
	// SqrtTransform replaces feature weights w with sqrt(w), after LogTransform.
	SqrtTransform bool `yaml:"sqrt_transform" json:"sqrt_transform"`
	// UseBag selects the bag layout. Weights become repetition counts.
	UseBag bool `yaml:"use_bag" json:"use_bag"`
	// MaxRepeat caps how often an index is repeated in the bag layout.
	MaxRepeat int `yaml:"max_repeat" json:"max_repeat"`
	// Subsample caps the number of features per example; 0 means unlimited.
	Subsample int `yaml:"subsample" json:"subsample"`
	// SampleSingleLabel replaces the label vector with one label drawn
	// uniformly from the example's labels.
	SampleSingleLabel bool `yaml:"sample_single_label" json:"sample_single_label"`
}

// DefaultConfig returns scaled labels, log-scaled weights and the padded
// layout.
func DefaultConfig() Config {
	return Config{
		ScaleY:       true,
		LogTransform: true,
		MaxRepeat:    1,
	}
}

// Validate checks the numeric fields.
func (c Config) Validate() error {
	if c.MaxRepeat < 1 {
		return fmt.Errorf("%w: max_repeat must be at least 1, got %d", ErrInvalidConfig, c.MaxRepeat)
	}
	if c.Subsample < 0 {
		return fmt.Errorf("%w: subsample must not be negative, got %d", ErrInvalidConfig, c.Subsample)
	}
	return nil
}

// Layout returns the batch layout selected by c.
func (c Config) Layout() Layout {
	if c.UseBag {
		return Bag
	}
	return Padded
}
