package libsvm

import (
	"errors"
	"fmt"
)

// ErrFormat is the sentinel matched by every FormatError.
var ErrFormat = errors.New("libsvm: malformed input")

// FormatError describes a malformed header or data line.
type FormatError struct {
	// Line is the 1-based line number; the header is line 1.
	Line   int
	Reason string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("libsvm: line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("libsvm: line %d: %s", e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFormat) true for every FormatError.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErrorf(line int, cause error, format string, args ...any) error {
	return &FormatError{Line: line, Reason: fmt.Sprintf(format, args...), Err: cause}
}
