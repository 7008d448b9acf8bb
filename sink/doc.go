// Package sink implements the outputs of a prefetch search.
//
// Every sink writes to an io.WriteCloser it owns, so outputs can go to local
// files, object storage (through blobstore.WritableBlob) or standard output.
//
//   - CSV: one row per match
//   - Collection: the matched signatures, as a signature file
//   - MatchedHashes: the query hashes found in any match
//   - UnmatchedHashes: the query hashes found in no match
package sink
