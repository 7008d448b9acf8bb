// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object store. This package uses the official
// MinIO Go client and works with other S3-compatible services such as Ceph,
// SeaweedFS and Garage without pulling in the AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewEnvMinio(),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "signatures", "")
//
// Candidate locations of the form "minio://bucket/key" are routed here by
// the source package's Resolver.
package minio
