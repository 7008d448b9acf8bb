package prefetch

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"testing"

	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
	"github.com/hupe1980/prefetch/source"
	"github.com/stretchr/testify/assert"
)

const shewanella = "NC_009665.1 Shewanella baltica OS185, complete genome"

type sliceSource struct {
	entries []source.Entry
}

func entriesOf(sigs ...*signature.Signature) *sliceSource {
	s := &sliceSource{}
	for _, sig := range sigs {
		s.entries = append(s.entries, source.Entry{
			Location:   sig.Name + ".sig",
			Signatures: []*signature.Signature{sig},
		})
	}
	return s
}

func (s *sliceSource) Inputs() int { return len(s.entries) }

func (s *sliceSource) Entries(ctx context.Context) iter.Seq2[source.Entry, error] {
	return func(yield func(source.Entry, error) bool) {
		for _, e := range s.entries {
			if err := ctx.Err(); err != nil {
				yield(source.Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

type recordingSink struct {
	matches  []*Match
	finished *RunState
	closed   bool
}

func (r *recordingSink) Match(_ context.Context, m *Match) error {
	r.matches = append(r.matches, m)
	return nil
}

func (r *recordingSink) Finish(_ context.Context, s *RunState) error {
	r.finished = s
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func captureLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(slog.NewTextHandler(&buf, nil)), &buf
}

func queryOf(mh *sketch.MinHash) *Query {
	return &Query{Signature: signature.New(shewanella, mh), Sketch: mh}
}

func withHashes(base *sketch.MinHash, hashes []uint64) *sketch.MinHash {
	mh := base.CopyAndClear()
	mh.AddMany(hashes)
	return mh
}

func assertPartition(t *testing.T, s *RunState) {
	t.Helper()

	m, r, v := s.Matched(), s.Remaining(), s.QueryView()
	assert.Zero(t, m.IntersectionCount(r), "matched and remaining overlap")

	u := m.Copy()
	u.Merge(r)
	assert.True(t, u.Equal(v), "matched and remaining do not cover the query view")
	assert.Equal(t, s.WorkingScale(), v.Scaled())
}
