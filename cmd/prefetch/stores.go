package main

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/prefetch/blobstore"
	minioblob "github.com/hupe1980/prefetch/blobstore/minio"
	s3blob "github.com/hupe1980/prefetch/blobstore/s3"
	"github.com/hupe1980/prefetch/source"
)

// newResolver returns a resolver for local paths, s3:// and minio://
// locations. Remote clients are created on first use.
func newResolver(cfg *Config) *source.Resolver {
	r := source.NewResolver()

	awsConfig := sync.OnceValues(func() (aws.Config, error) {
		return config.LoadDefaultConfig(context.Background())
	})
	r.Register("s3", func(ctx context.Context, bucket string) (blobstore.BlobStore, error) {
		awsCfg, err := awsConfig()
		if err != nil {
			return nil, err
		}
		return s3blob.NewStore(awss3.NewFromConfig(awsCfg), bucket, ""), nil
	})

	minioClient := sync.OnceValues(func() (*minio.Client, error) {
		endpoint := cfg.MinioEndpoint
		if endpoint == "" {
			endpoint = os.Getenv("MINIO_ENDPOINT")
		}
		if endpoint == "" {
			return nil, errors.New("minio endpoint not configured (--minio-endpoint or MINIO_ENDPOINT)")
		}
		return minio.New(endpoint, &minio.Options{
			Creds: credentials.NewChainCredentials([]credentials.Provider{
				&credentials.EnvMinio{},
				&credentials.EnvAWS{},
			}),
			Secure: cfg.MinioSecure,
		})
	})
	r.Register("minio", func(ctx context.Context, bucket string) (blobstore.BlobStore, error) {
		client, err := minioClient()
		if err != nil {
			return nil, err
		}
		return minioblob.NewStore(client, bucket, ""), nil
	})

	return r
}
