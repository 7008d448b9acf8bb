// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "signatures/")
//
// Candidate locations of the form "s3://bucket/key" are routed here by the
// source package's Resolver.
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large signature collections
//   - Automatic pagination for listing
package s3
