package persistence

import (
	"errors"
	"fmt"
)

// ErrCacheCorrupt is the sentinel matched by every CacheCorruptError.
var ErrCacheCorrupt = errors.New("persistence: cache corrupt")

// CacheCorruptError reports a missing or inconsistent archive field.
type CacheCorruptError struct {
	// Field is the section name, or "header" / "footer" / "matrix".
	Field  string
	Reason string
	Err    error
}

func (e *CacheCorruptError) Error() string {
	msg := fmt.Sprintf("persistence: cache corrupt: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CacheCorruptError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCacheCorrupt) true for every CacheCorruptError.
func (e *CacheCorruptError) Is(target error) bool { return target == ErrCacheCorrupt }

func corrupt(field string, err error, format string, args ...any) error {
	return &CacheCorruptError{Field: field, Reason: fmt.Sprintf(format, args...), Err: err}
}
