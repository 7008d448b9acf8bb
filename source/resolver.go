package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/prefetch/blobstore"
)

// ErrUnknownScheme is returned for locations whose scheme has no registered store.
var ErrUnknownScheme = errors.New("unknown location scheme")

// signatureSuffixes lists the file names picked up when a directory or
// prefix is expanded.
var signatureSuffixes = []string{
	".sig", ".sig.gz", ".sig.zst", ".sig.lz4",
	".json", ".json.gz", ".json.zst", ".json.lz4",
}

// IsSignatureName reports whether name looks like a signature file.
func IsSignatureName(name string) bool {
	for _, s := range signatureSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// StoreFactory opens the store backing one bucket of a scheme.
type StoreFactory func(ctx context.Context, bucket string) (blobstore.BlobStore, error)

// Target is a resolved location.
type Target struct {
	// Location is the display form of the target.
	Location string
	Store    blobstore.BlobStore
	Name     string
}

// Resolver maps locations to stores. Stores are created once per
// scheme and bucket and then reused.
type Resolver struct {
	mu        sync.Mutex
	local     *blobstore.LocalStore
	factories map[string]StoreFactory
	stores    map[string]blobstore.BlobStore
}

// NewResolver creates a resolver that understands local paths and
// file:// URLs.
func NewResolver() *Resolver {
	return &Resolver{
		local:     blobstore.NewLocalStore(""),
		factories: make(map[string]StoreFactory),
		stores:    make(map[string]blobstore.BlobStore),
	}
}

// Register installs the factory for scheme, replacing any previous one.
func (r *Resolver) Register(scheme string, f StoreFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[scheme] = f
}

// splitLocation returns the scheme, bucket and name of loc.
// Local paths have an empty scheme and bucket.
func splitLocation(loc string) (scheme, bucket, name string) {
	scheme, rest, ok := strings.Cut(loc, "://")
	if !ok || strings.ContainsAny(scheme, `/\`) {
		return "", "", loc
	}
	if scheme == "file" {
		return "", "", rest
	}
	bucket, name, _ = strings.Cut(rest, "/")
	return scheme, bucket, name
}

// Resolve maps loc to its store and blob name.
func (r *Resolver) Resolve(ctx context.Context, loc string) (Target, error) {
	scheme, bucket, name := splitLocation(loc)
	if scheme == "" {
		return Target{Location: name, Store: r.local, Name: name}, nil
	}

	store, err := r.store(ctx, scheme, bucket)
	if err != nil {
		return Target{}, err
	}
	return Target{Location: loc, Store: store, Name: name}, nil
}

func (r *Resolver) store(ctx context.Context, scheme, bucket string) (blobstore.BlobStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := scheme + "://" + bucket
	if s, ok := r.stores[key]; ok {
		return s, nil
	}

	f, ok := r.factories[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	if bucket == "" {
		return nil, fmt.Errorf("missing bucket in %s location", scheme)
	}

	s, err := f(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	r.stores[key] = s
	return s, nil
}

// Expand resolves loc and, when it names a local directory or an object
// prefix ending in "/", lists every signature file below it.
func (r *Resolver) Expand(ctx context.Context, loc string) ([]Target, error) {
	t, err := r.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}

	if !r.isCollection(t) {
		return []Target{t}, nil
	}

	names, err := t.Store.List(ctx, t.Name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", loc, err)
	}

	scheme, bucket, _ := splitLocation(loc)

	var out []Target
	for _, name := range names {
		if !IsSignatureName(name) {
			continue
		}
		display := name
		if scheme != "" {
			display = scheme + "://" + bucket + "/" + name
		}
		out = append(out, Target{Location: display, Store: t.Store, Name: name})
	}
	return out, nil
}

func (r *Resolver) isCollection(t Target) bool {
	if t.Store == blobstore.BlobStore(r.local) {
		return r.local.IsDir(t.Name)
	}
	return t.Name == "" || strings.HasSuffix(t.Name, "/")
}

// Create opens loc for writing.
func (r *Resolver) Create(ctx context.Context, loc string) (blobstore.WritableBlob, error) {
	t, err := r.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}
	return t.Store.Create(ctx, t.Name)
}
