// Package resource bounds the resources used while producing batches and
// moving cache archives: a weighted semaphore for worker slots, another for
// the bytes held by prefetched batches, and a token bucket for IO bandwidth.
package resource
