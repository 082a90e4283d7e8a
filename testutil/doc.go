// Package testutil provides testing utilities for phrasego.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG, synthetic phrase lattices, a static
// phrase lookup, a small stateful scorer, and an exhaustive reference search.
//
// # Synthetic Lattices
//
//	rng := testutil.NewRNG(seed)
//	sentence, options := rng.Lattice(6, 3, 2)
//
// # Reference Search
//
//	best, ok := testutil.ExhaustiveBest(sentence, options, testutil.NewScorer(0.5))
package testutil
