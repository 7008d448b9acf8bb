package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/prefetch/blobstore"
	"github.com/minio/minio-go/v7"
)

var errUploadAborted = errors.New("minio: upload aborted")

// Store implements blobstore.BlobStore over one MinIO bucket.
// Object keys are the root prefix joined with the blob name.
type Store struct {
	client *minio.Client
	bucket string
	root   string
}

// NewStore creates a MinIO blob store.
// rootPrefix is prepended to all keys (e.g. "signatures/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		root:   strings.Trim(rootPrefix, "/"),
	}
}

// objectKey maps a blob name to its object key. Prefix names ("" or
// ending in "/") keep a trailing slash so "db/" lists only below db.
func (s *Store) objectKey(name string) string {
	key := path.Join(s.root, name)
	if (name == "" || strings.HasSuffix(name, "/")) && key != "" && !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return key
}

// blobName is the inverse of objectKey.
func (s *Store) blobName(key string) string {
	if s.root == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, s.root), "/")
}

// translate attaches the object location to err and maps missing
// objects and buckets to blobstore.ErrNotFound.
func (s *Store) translate(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		err = blobstore.ErrNotFound
	}
	return fmt.Errorf("minio://%s/%s: %w", s.bucket, key, err)
}

// contentType labels uploaded signature files by their compression suffix.
func contentType(name string) string {
	switch path.Ext(name) {
	case ".gz":
		return "application/gzip"
	case ".zst":
		return "application/zstd"
	case ".lz4":
		return "application/x-lz4"
	default:
		return "application/json"
	}
}

// Open stats the object and returns a handle pinned to its ETag, so a file
// replaced while it is being read fails instead of mixing versions.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectKey(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s.translate(key, err)
	}
	return &object{store: s, key: key, etag: info.ETag, size: info.Size}, nil
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.objectKey(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(name)})
	if err != nil {
		return s.translate(key, err)
	}
	return nil
}

// Create streams writes into an upload that completes on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	key := s.objectKey(name)
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(ctx)

	u := &upload{pw: pw, cancel: cancel, done: make(chan error, 1)}
	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, key, pr, -1,
			minio.PutObjectOptions{ContentType: contentType(name)})
		if err != nil {
			err = s.translate(key, err)
		}
		_ = pr.CloseWithError(err)
		u.done <- err
	}()
	return u, nil
}

// List returns the sorted names of all objects below prefix.
// Directory marker objects are skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	key := s.objectKey(prefix)

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    key,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, s.translate(key, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if name := s.blobName(obj.Key); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

type object struct {
	store *Store
	key   string
	etag  string
	size  int64
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= o.size || length <= 0 {
		return nil, io.EOF
	}

	opts := minio.GetObjectOptions{}
	if o.etag != "" {
		if err := opts.SetMatchETag(o.etag); err != nil {
			return nil, err
		}
	}
	if err := opts.SetRange(off, min(off+length, o.size)-1); err != nil {
		return nil, err
	}

	r, err := o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
	if err != nil {
		return nil, o.store.translate(o.key, err)
	}
	return r, nil
}

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	r, err := o.ReadRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n, err := io.ReadFull(r, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

// upload is a streaming PutObject fed through a pipe.
type upload struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan error
	closed atomic.Bool
}

func (u *upload) Write(p []byte) (int, error) {
	if u.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return u.pw.Write(p)
}

func (u *upload) Close() error {
	if !u.closed.CompareAndSwap(false, true) {
		return io.ErrClosedPipe
	}
	defer u.cancel()
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}

// Abort fails the upload so no object is created.
func (u *upload) Abort() error {
	if !u.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = u.pw.CloseWithError(errUploadAborted)
	u.cancel()
	<-u.done
	return nil
}

// Sync is a no-op; data is only committed by Close.
func (u *upload) Sync() error { return nil }
