// Package trim computes frequency-threshold masks over sparse matrices and
// applies them.
//
// A Mask selects columns or rows of a csr.Matrix. Masks are stored as roaring
// bitmaps of kept positions so that masks learned on one split can be
// serialized and applied to another.
//
// Pair performs the full filtering of a feature/label pair in two phases:
// column masks for X and Y first, then a combined row mask that keeps only
// rows with at least one surviving positive entry in both matrices. The result
// is canonicalized.
package trim
