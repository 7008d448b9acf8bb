// Package source enumerates candidate signatures for a search.
//
// Candidates are named by locations: plain paths, "file://" URLs, or
// object URLs such as "s3://bucket/db/" and "minio://bucket/genomes/63.sig".
// A Resolver maps a location to a blobstore.BlobStore and a blob name.
// Directories and prefixes ending in "/" expand to every signature file
// below them.
//
// Locations come from arguments (Args), from a file listing one location
// per line (FromFile), or from both (Concat). A Source loads them ahead of
// the consumer with a bounded number of concurrent loads and delivers
// entries strictly in enumeration order.
//
//	r := source.NewResolver()
//	r.Register("s3", func(ctx context.Context, bucket string) (blobstore.BlobStore, error) {
//	    return s3blob.NewStore(client, bucket, ""), nil
//	})
//
//	src := source.New(r, source.Args("db/", "s3://sigs/47.fa.sig"), source.WithPrefetch(4))
//	for entry, err := range src.Entries(ctx) {
//	    ...
//	}
package source
