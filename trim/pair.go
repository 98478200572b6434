package trim

import (
	"fmt"

	"github.com/hupe1980/xmcdata/csr"
)

// Params controls Pair.
type Params struct {
	// MinWords is the minimum number of rows a feature column must appear in.
	MinWords int
	// MinLabels is the minimum number of rows a label column must appear in.
	MinLabels int
	// FeatureMask, when set, replaces the mask computed from MinWords.
	FeatureMask *Mask
	// LabelMask, when set, replaces the mask computed from MinLabels.
	LabelMask *Mask
}

// Result is a filtered pair together with the masks that produced it.
type Result struct {
	X *csr.Matrix
	Y *csr.Matrix

	FeatureMask *Mask
	LabelMask   *Mask
	// RowMask ranges over the rows of the unfiltered pair.
	RowMask *Mask
}

// Pair filters a feature/label pair. Column masks are applied first, then
// rows without a positive feature or without a positive label are dropped,
// then both matrices are canonicalized.
func Pair(X, Y *csr.Matrix, p Params) (*Result, error) {
	if X.Rows() != Y.Rows() {
		return nil, fmt.Errorf("%w: X has %d rows, Y has %d", csr.ErrShapeMismatch, X.Rows(), Y.Rows())
	}

	fmask := p.FeatureMask
	if fmask == nil {
		fmask = ComputeMask(X, Columns, p.MinWords)
	}
	lmask := p.LabelMask
	if lmask == nil {
		lmask = ComputeMask(Y, Columns, p.MinLabels)
	}

	x, err := Apply(X, Columns, fmask)
	if err != nil {
		return nil, fmt.Errorf("trim: features: %w", err)
	}
	y, err := Apply(Y, Columns, lmask)
	if err != nil {
		return nil, fmt.Errorf("trim: labels: %w", err)
	}

	rows, err := ComputeMask(x, Rows, 1).And(ComputeMask(y, Rows, 1))
	if err != nil {
		return nil, err
	}
	if x, err = Apply(x, Rows, rows); err != nil {
		return nil, err
	}
	if y, err = Apply(y, Rows, rows); err != nil {
		return nil, err
	}

	return &Result{
		X:           x.Canonicalize(),
		Y:           y.Canonicalize(),
		FeatureMask: fmask,
		LabelMask:   lmask,
		RowMask:     rows,
	}, nil
}
