// Package testutil provides testing utilities for prefetch.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic generators for hash sets, sketches and
// signature files.
//
// # Random Sketch Generation
//
//	rng := testutil.NewRNG(seed)
//	query := rng.ScaledSketch(31, 1000, 5000)      // 5000 hashes below the scaled=1000 bound
//	match := rng.Overlapping(query, 2500, 100)     // shares 2500 hashes, adds 100 new ones
//
// # Signature Files
//
//	data := testutil.SignatureJSON(t, sig)
//	store.Put(ctx, "db/63.fa.sig", data)
package testutil
