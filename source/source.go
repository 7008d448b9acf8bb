package source

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/prefetch/codec"
	"github.com/hupe1980/prefetch/internal/resource"
	"github.com/hupe1980/prefetch/signature"
)

// Entry is one loaded candidate file.
type Entry struct {
	Location   string
	Signatures []*signature.Signature
	// Bytes is the stored size of the file.
	Bytes int64
	// Err is set when the file could not be listed, read or decoded.
	Err error
}

type options struct {
	depth  int
	codec  codec.Codec
	limits resource.Config
}

// Option configures a Source.
type Option func(*options)

// WithPrefetch sets how many files are loaded ahead of the consumer.
func WithPrefetch(depth int) Option {
	return func(o *options) {
		o.depth = depth
	}
}

// WithCodec sets the JSON codec used to decode signature files.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithMemoryLimit bounds the estimated decoded bytes of loaded files not yet
// consumed. Compressed files count at a multiple of their stored size.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.limits.MemoryLimitBytes = bytes
	}
}

// WithIOLimit bounds read throughput in bytes per second.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.limits.IOLimitBytesPerSec = bytesPerSec
	}
}

// Source loads candidate files in order, prefetching ahead of the consumer.
type Source struct {
	resolver *Resolver
	locs     Locations
	depth    int
	loader   *Loader
}

// New creates a source over locs.
func New(r *Resolver, locs Locations, optFns ...Option) *Source {
	o := options{depth: 1}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.depth < 1 {
		o.depth = 1
	}
	o.limits.MaxWorkers = int64(o.depth)

	return &Source{
		resolver: r,
		locs:     locs,
		depth:    o.depth,
		loader:   NewLoader(o.codec, resource.NewController(o.limits)),
	}
}

// Inputs returns the number of configured locations before expansion.
func (s *Source) Inputs() int {
	return len(s.locs)
}

type pending struct {
	location string
	done     chan struct{}
	res      *Reservation
	sigs     []*signature.Signature
	err      error
}

var closed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Entries yields one entry per candidate file in enumeration order.
// Per-file failures are reported in Entry.Err; the iterator's error is
// only set when ctx ends. Stopping early cancels outstanding loads.
func (s *Source) Entries(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		ctx, cancel := context.WithCancel(ctx)

		var g errgroup.Group
		g.SetLimit(s.depth)

		queue := make(chan *pending, s.depth)
		produced := make(chan struct{})

		go func() {
			defer close(produced)
			defer close(queue)
			s.produce(ctx, &g, queue)
		}()

		var cur *pending
		defer func() {
			cancel()
			<-produced
			_ = g.Wait()
			if cur != nil {
				s.loader.Release(cur.res)
			}
			for p := range queue {
				s.loader.Release(p.res)
			}
		}()

		for cur = range queue {
			select {
			case <-cur.done:
			case <-ctx.Done():
			}
			if err := ctx.Err(); err != nil {
				yield(Entry{}, err)
				return
			}

			ok := yield(Entry{
				Location:   cur.location,
				Signatures: cur.sigs,
				Bytes:      cur.res.Size(),
				Err:        cur.err,
			}, nil)
			s.loader.Release(cur.res)
			if !ok {
				return
			}
		}
		cur = nil

		if err := ctx.Err(); err != nil {
			yield(Entry{}, err)
		}
	}
}

func (s *Source) produce(ctx context.Context, g *errgroup.Group, queue chan<- *pending) {
	enqueue := func(p *pending) bool {
		select {
		case queue <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, loc := range s.locs {
		targets, err := s.resolver.Expand(ctx, loc)
		if err != nil {
			if !enqueue(&pending{location: loc, done: closed, err: err}) {
				return
			}
			continue
		}

		for _, t := range targets {
			res, err := s.loader.Reserve(ctx, t)
			if err != nil {
				if !enqueue(&pending{location: t.Location, done: closed, err: err}) {
					return
				}
				continue
			}

			p := &pending{location: t.Location, done: make(chan struct{}), res: res}
			if !enqueue(p) {
				_ = res.blob.Close()
				s.loader.Release(res)
				return
			}
			g.Go(func() error {
				defer close(p.done)
				p.sigs, p.err = s.loader.Decode(ctx, res)
				return nil
			})
		}
	}
}
