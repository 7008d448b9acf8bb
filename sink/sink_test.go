package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/hupe1980/prefetch"
	"github.com/hupe1980/prefetch/blobstore"
	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
	"github.com/hupe1980/prefetch/source"
	"github.com/hupe1980/prefetch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buffer struct {
	bytes.Buffer
	closed int
}

func (b *buffer) Close() error {
	b.closed++
	return nil
}

type fixture struct {
	query     *prefetch.Query
	self      *signature.Signature
	related   *signature.Signature
	unrelated *signature.Signature
	src       *source.Source
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	rng := testutil.NewRNG(63)

	k31 := rng.ScaledSketch(31, 1000, 1000)
	self := signature.New("NC_009665.1 Shewanella baltica OS185", rng.ScaledSketch(21, 1000, 50), k31)
	self.Filename = "47.fa"

	related := signature.New("NC_011663.1 Shewanella baltica OS223", rng.Overlapping(k31, 600, 400))
	related.Filename = "63.fa"

	unrelated := signature.New("CP001071.1 Akkermansia muciniphila", rng.Overlapping(k31, 0, 500))
	unrelated.Filename = "2.fa"

	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "47.fa.sig", testutil.SignatureJSON(t, self)))
	require.NoError(t, store.Put(ctx, "63.fa.sig", testutil.SignatureJSON(t, related)))
	require.NoError(t, store.Put(ctx, "2.fa.sig", testutil.SignatureJSON(t, unrelated)))

	r := source.NewResolver()
	r.Register("mem", func(context.Context, string) (blobstore.BlobStore, error) { return store, nil })

	q, err := prefetch.SelectQuery([]*signature.Signature{self}, prefetch.Selection{Ksize: 31})
	require.NoError(t, err)

	return fixture{
		query:     q,
		self:      self,
		related:   related,
		unrelated: unrelated,
		src:       source.New(r, source.Args("mem://db/63.fa.sig", "mem://db/2.fa.sig", "mem://db/47.fa.sig")),
	}
}

func TestCSV(t *testing.T) {
	f := newFixture(t)

	var out buffer
	s := NewCSV(&out)
	_, err := prefetch.Search(t.Context(), f.query, f.src, prefetch.WithSinks(s))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, 1, out.closed)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])

	col := func(row []string, name string) string {
		for i, c := range Columns {
			if c == name {
				return row[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}

	first := rows[1]
	assert.Equal(t, "600000", col(first, "intersect_bp"))
	assert.Equal(t, "600", col(first, "intersect_hashes"))
	assert.Equal(t, "63.fa", col(first, "match_filename"))
	assert.Equal(t, f.related.Name, col(first, "match_name"))
	assert.Equal(t, f.related.Sketches[0].MD5(), col(first, "match_md5"))
	assert.Equal(t, "1000", col(first, "match_size"))
	assert.Equal(t, "47.fa", col(first, "query_filename"))
	assert.Equal(t, f.query.Sketch.MD5(), col(first, "query_md5"))
	assert.Equal(t, "1000000", col(first, "query_bp"))
	assert.Equal(t, "1000", col(first, "scaled"))
	assert.Equal(t, "0", col(first, "position"))
	assert.Equal(t, "0.6", col(first, "f_query_match"))
	assert.Equal(t, "0.6", col(first, "max_containment"))

	jaccard, err := strconv.ParseFloat(col(first, "jaccard"), 64)
	require.NoError(t, err)
	assert.InDelta(t, 600.0/1400, jaccard, 1e-12)

	second := rows[2]
	assert.Equal(t, "47.fa", col(second, "match_filename"))
	assert.Equal(t, "1", col(second, "max_containment"))
	assert.Equal(t, "2", col(second, "position"))
}

func TestCollection(t *testing.T) {
	f := newFixture(t)

	var out buffer
	s, err := NewCollection(&out, signature.CompressionGzip, nil)
	require.NoError(t, err)

	_, err = prefetch.Search(t.Context(), f.query, f.src, prefetch.WithSinks(s))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, 2, s.Count())

	sigs, err := signature.Load(&out, nil)
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	assert.Equal(t, f.related.Name, sigs[0].Name)
	assert.Equal(t, f.self.Name, sigs[1].Name)
	// Only the compared sketch is kept.
	require.Len(t, sigs[1].Sketches, 1)
	assert.True(t, sigs[1].Sketches[0].Equal(f.query.Sketch))
}

func TestCollection_Empty(t *testing.T) {
	var out buffer
	s, err := NewCollection(&out, signature.CompressionNone, nil)
	require.NoError(t, err)
	require.NoError(t, s.Finish(t.Context(), nil))
	require.NoError(t, s.Close())

	sigs, err := signature.Load(&out, nil)
	require.NoError(t, err)
	assert.Empty(t, sigs)
}

func TestHashes(t *testing.T) {
	f := newFixture(t)

	var matched, unmatched buffer
	ms := MatchedHashes(&matched, signature.CompressionNone, nil)
	us := UnmatchedHashes(&unmatched, signature.CompressionZSTD, nil)

	// The query itself is among the candidates, so everything matches.
	_, err := prefetch.Search(t.Context(), f.query, f.src, prefetch.WithSinks(ms, us), prefetch.WithThresholdBP(0))
	require.NoError(t, err)
	require.NoError(t, ms.Close())
	require.NoError(t, us.Close())

	got, err := signature.Load(&matched, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.query.Name(), got[0].Name)
	assert.True(t, got[0].Sketches[0].Equal(f.query.Sketch))

	got, err = signature.Load(&unmatched, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Sketches[0].IsEmpty())
}

func TestHashes_RelatedOnly(t *testing.T) {
	f := newFixture(t)

	var matched, unmatched buffer
	ms := MatchedHashes(&matched, signature.CompressionNone, nil)
	us := UnmatchedHashes(&unmatched, signature.CompressionNone, nil)

	r := source.NewResolver()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(t.Context(), "63.fa.sig", testutil.SignatureJSON(t, f.related)))
	r.Register("mem", func(context.Context, string) (blobstore.BlobStore, error) { return store, nil })

	_, err := prefetch.Search(t.Context(), f.query, source.New(r, source.Args("mem://db/63.fa.sig")),
		prefetch.WithSinks(ms, us))
	require.NoError(t, err)

	m, err := signature.Load(&matched, nil)
	require.NoError(t, err)
	u, err := signature.Load(&unmatched, nil)
	require.NoError(t, err)

	want := f.query.Sketch.Intersection(f.related.Sketches[0])
	assert.True(t, m[0].Sketches[0].Equal(want))

	remain := f.query.Sketch.Copy()
	remain.Subtract(f.related.Sketches[0])
	assert.True(t, u[0].Sketches[0].Equal(remain))
	assert.Equal(t, sketch.DNA, u[0].Sketches[0].Moltype())
}

type abortableBuffer struct {
	buffer
	aborted int
}

func (b *abortableBuffer) Abort() error {
	b.aborted++
	return nil
}

func TestSinks_AbortUnfinished(t *testing.T) {
	f := newFixture(t)

	var csvOut, matchesOut, matchedOut abortableBuffer
	cs := NewCSV(&csvOut)
	col, err := NewCollection(&matchesOut, signature.CompressionNone, nil)
	require.NoError(t, err)
	hs := MatchedHashes(&matchedOut, signature.CompressionNone, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = prefetch.Search(ctx, f.query, f.src, prefetch.WithSinks(cs, col, hs))
	require.Error(t, err)

	require.NoError(t, cs.Close())
	require.NoError(t, col.Close())
	require.NoError(t, hs.Close())

	for name, out := range map[string]*abortableBuffer{"csv": &csvOut, "matches": &matchesOut, "matched": &matchedOut} {
		assert.Equal(t, 1, out.aborted, name)
		assert.Equal(t, 0, out.closed, name)
	}
}

func TestSinks_CommitFinished(t *testing.T) {
	f := newFixture(t)

	var csvOut, matchedOut abortableBuffer
	cs := NewCSV(&csvOut)
	hs := MatchedHashes(&matchedOut, signature.CompressionNone, nil)

	_, err := prefetch.Search(t.Context(), f.query, f.src, prefetch.WithSinks(cs, hs))
	require.NoError(t, err)
	require.NoError(t, cs.Close())
	require.NoError(t, hs.Close())

	for _, out := range []*abortableBuffer{&csvOut, &matchedOut} {
		assert.Equal(t, 0, out.aborted)
		assert.Equal(t, 1, out.closed)
		assert.NotZero(t, out.Len())
	}
}
