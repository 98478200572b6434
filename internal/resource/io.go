package resource

import (
	"context"
	"io"
)

// IOLimiter admits a number of bytes. *Controller implements it.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// RateLimitedReader charges every read against an IOLimiter.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	l   IOLimiter
}

// NewRateLimitedReader wraps r. A nil limiter passes reads through.
func NewRateLimitedReader(ctx context.Context, r io.Reader, l IOLimiter) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, l: l}
}

// Read charges the limiter for the bytes actually read.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 && r.l != nil {
		if lerr := r.l.AcquireIO(r.ctx, n); lerr != nil {
			return n, lerr
		}
	}
	return n, err
}
