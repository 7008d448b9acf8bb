package sink

import (
	"context"
	"io"

	"github.com/hupe1980/prefetch"
	"github.com/hupe1980/prefetch/codec"
	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
)

// Hashes saves one aggregate of the final search state as a signature
// named after the query, at the final working scale.
type Hashes struct {
	w        io.WriteCloser
	comp     signature.Compression
	codec    codec.Codec
	pick     func(*prefetch.RunState) *sketch.MinHash
	closed   bool
	finished bool
}

// MatchedHashes saves the query hashes found in at least one match.
func MatchedHashes(w io.WriteCloser, comp signature.Compression, c codec.Codec) *Hashes {
	return &Hashes{w: w, comp: comp, codec: c, pick: (*prefetch.RunState).Matched}
}

// UnmatchedHashes saves the query hashes found in no match.
func UnmatchedHashes(w io.WriteCloser, comp signature.Compression, c codec.Codec) *Hashes {
	return &Hashes{w: w, comp: comp, codec: c, pick: (*prefetch.RunState).Remaining}
}

// Match implements prefetch.Sink.
func (s *Hashes) Match(context.Context, *prefetch.Match) error { return nil }

// Finish implements prefetch.Sink.
func (s *Hashes) Finish(_ context.Context, state *prefetch.RunState) error {
	q := state.Query()
	sig := signature.New(q.Signature.Name, s.pick(state).Copy())
	sig.Filename = q.Signature.Filename
	if err := signature.Save(s.w, []*signature.Signature{sig}, s.comp, s.codec); err != nil {
		return err
	}
	s.finished = true
	return nil
}

// Close closes the underlying writer. If the search did not finish, an
// abortable writer is discarded instead.
func (s *Hashes) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if aborted, err := abandon(s.w, s.finished); aborted {
		return err
	}
	return s.w.Close()
}

var _ prefetch.Sink = (*Hashes)(nil)
