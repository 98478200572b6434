package preprocess

import "errors"

var (
	// ErrEmptyExample is returned when an example without features or labels
	// reaches a transform. Trimming guarantees non-empty rows, so this
	// indicates a bug upstream.
	ErrEmptyExample = errors.New("preprocess: empty example")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("preprocess: invalid config")
)
