// Package blobstore provides the storage abstraction prefetch reads candidate
// signature files from and writes its outputs to.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads, atomic temp-file writes
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Locations such as "s3://bucket/key" are mapped onto a store and a blob
// name by the source package's Resolver.
package blobstore
