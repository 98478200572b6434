// Package testutil provides helpers for tests and benchmarks: a seeded,
// thread-safe RNG, random sparse matrices and dataset text fixtures.
//
//	rng := testutil.NewRNG(42)
//	X := testutil.RandomCSR(rng, 100, 50, 0.05)
//	Y := testutil.RandomLabels(rng, 100, 20, 3)
//	text := testutil.FormatLibSVM(X, Y)
package testutil
