// Package prefetch finds every signature in a collection that shares at
// least a threshold of content with a query signature.
//
// Sketches are FracMinHash ("scaled") sketches: each keeps the hashes of a
// sequence's k-mers that fall below max_hash = 2^64/scaled, so the number of
// shared hashes multiplied by scaled estimates the shared base pairs.
//
// # Quick Start
//
//	sigs, _ := signature.Load(f, nil)
//	query, _ := prefetch.SelectQuery(sigs, prefetch.Selection{Ksize: 31})
//
//	src := source.New(source.NewResolver(), source.Args("db/"))
//	summary, err := prefetch.Search(ctx, query, src,
//	    prefetch.WithThresholdBP(50000),
//	    prefetch.WithSinks(csvSink),
//	)
//
// # Resolution
//
// Candidates may be sketched at different scales. The search keeps a single
// working scale that only ever grows: a coarser candidate raises it and the
// query view is downsampled, while a finer candidate is downsampled for its
// own comparison only. WithScaled sets a floor for the working scale.
//
// # Aggregates
//
// Besides per-candidate matches, a search maintains the query hashes found
// in any match and the ones not yet found. Both are handed to sinks at the
// end of the search through the final RunState.
package prefetch
