// Package signature reads and writes sourmash-compatible signature files.
//
// A signature names a sequence and carries one sketch per (k-mer size,
// alphabet) combination it was computed for. Files hold either a single JSON
// signature object or a JSON list of them, optionally wrapped in gzip, zstd or
// lz4 framing; Load detects the framing from the leading magic bytes.
package signature
