package sink

import (
	"context"
	"io"

	"github.com/hupe1980/prefetch"
	"github.com/hupe1980/prefetch/codec"
	"github.com/hupe1980/prefetch/signature"
)

// Collection saves every matched signature, in arrival order. Only the
// sketch that was compared is kept, at its native resolution.
type Collection struct {
	w        io.WriteCloser
	enc      *signature.Encoder
	closed   bool
	finished bool
}

// NewCollection creates a collection sink.
func NewCollection(w io.WriteCloser, comp signature.Compression, c codec.Codec) (*Collection, error) {
	enc, err := signature.NewEncoder(w, comp, c)
	if err != nil {
		return nil, err
	}
	return &Collection{w: w, enc: enc}, nil
}

// Match implements prefetch.Sink.
func (s *Collection) Match(_ context.Context, m *prefetch.Match) error {
	c := m.Candidate
	return s.enc.Encode(c.Signature.WithSketches(c.Sketch))
}

// Finish implements prefetch.Sink.
func (s *Collection) Finish(context.Context, *prefetch.RunState) error {
	err := s.closeEncoder()
	s.finished = err == nil
	return err
}

func (s *Collection) closeEncoder() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.enc.Close()
}

// Count returns the number of signatures written.
func (s *Collection) Count() int { return s.enc.Count() }

// Close terminates the collection and closes the underlying writer. If
// the search did not finish, an abortable writer is discarded instead.
func (s *Collection) Close() error {
	if aborted, err := abandon(s.w, s.finished); aborted {
		return err
	}
	err := s.closeEncoder()
	if cerr := s.w.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ prefetch.Sink = (*Collection)(nil)
