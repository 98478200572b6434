// Package preprocess turns dataset samples into training batches.
//
// A Preprocessor applies per-example transforms to features (subsampling,
// log and square-root scaling, conversion into repeated indices) and labels
// (dense class weights or one sampled label) and collates a window of samples
// into one of two layouts:
//
//   - Padded: indices and weights of shape [batch, max_len]. Feature indices
//     are shifted by one so that 0 marks padding.
//   - Bag: all indices concatenated, with offsets[i] marking where example i
//     starts.
//
// Collate is a pure function of its inputs and the supplied random source,
// so workers may run it in parallel without locking.
//
// ComputeWeights derives per-class positive and negative loss weights from
// label frequencies.
package preprocess
