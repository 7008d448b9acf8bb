package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/prefetch/blobstore"
	"github.com/hupe1980/prefetch/codec"
	"github.com/hupe1980/prefetch/internal/resource"
	"github.com/hupe1980/prefetch/signature"
)

// Loader reads and decodes signature files under a resource budget.
type Loader struct {
	codec codec.Codec
	rc    *resource.Controller
}

// NewLoader creates a loader. A nil controller means no limits.
func NewLoader(c codec.Codec, rc *resource.Controller) *Loader {
	return &Loader{codec: codec.OrDefault(c), rc: rc}
}

// compressedExpansion is the assumed ratio of decoded to stored size for
// compressed signature files.
const compressedExpansion = 4

// Reservation is an opened candidate file whose estimated decoded size is
// held against the memory budget.
type Reservation struct {
	target Target
	blob   blobstore.Blob
	bytes  int64
	size   int64
}

// Size returns the stored size of the file.
func (r *Reservation) Size() int64 {
	if r == nil {
		return 0
	}
	return r.size
}

// Reserve opens t and reserves its estimated decoded size. Reservations
// must be made in consumption order so the oldest outstanding file can
// always complete.
func (l *Loader) Reserve(ctx context.Context, t Target) (*Reservation, error) {
	blob, err := t.Store.Open(ctx, t.Name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.Location, err)
	}

	n, err := l.rc.AcquireMemory(ctx, footprint(t, blob))
	if err != nil {
		_ = blob.Close()
		return nil, err
	}

	return &Reservation{target: t, blob: blob, bytes: n, size: blob.Size()}, nil
}

// Decode reads a reserved file and decodes every signature in it. The blob
// is closed; the memory reservation stays held until Release.
func (l *Loader) Decode(ctx context.Context, res *Reservation) ([]*signature.Signature, error) {
	defer res.blob.Close()

	if err := l.rc.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer l.rc.ReleaseWorker()

	r, err := l.reader(ctx, res.blob)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", res.target.Location, err)
	}
	defer r.Close()

	sigs, err := signature.Load(resource.NewRateLimitedReader(ctx, r, l.rc), l.codec)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", res.target.Location, err)
	}
	return sigs, nil
}

// Load reserves, decodes and releases t in one step.
func (l *Loader) Load(ctx context.Context, t Target) ([]*signature.Signature, error) {
	res, err := l.Reserve(ctx, t)
	if err != nil {
		return nil, err
	}
	defer l.Release(res)
	return l.Decode(ctx, res)
}

// Release returns a reservation's memory. It is safe to call with nil.
func (l *Loader) Release(res *Reservation) {
	if res == nil {
		return
	}
	l.rc.ReleaseMemory(res.bytes)
	res.bytes = 0
}

// footprint estimates the decoded size of a stored file. Compression is
// sniffed from mapped bytes and otherwise taken from the file name.
func footprint(t Target, blob blobstore.Blob) int64 {
	comp := signature.CompressionForName(t.Name)
	if m, ok := blob.(blobstore.Mappable); ok {
		if b, err := m.Bytes(); err == nil {
			comp = signature.DetectCompression(b)
		}
	}
	if comp == signature.CompressionNone {
		return blob.Size()
	}
	return blob.Size() * compressedExpansion
}

func (l *Loader) reader(ctx context.Context, blob blobstore.Blob) (io.ReadCloser, error) {
	if m, ok := blob.(blobstore.Mappable); ok {
		b, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	if blob.Size() == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return blob.ReadRange(ctx, 0, blob.Size())
}
