package sink

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/hupe1980/prefetch"
)

// Columns is the CSV header.
var Columns = []string{
	"intersect_bp",
	"intersect_hashes",
	"jaccard",
	"max_containment",
	"f_query_match",
	"f_match_query",
	"match_filename",
	"match_name",
	"match_md5",
	"match_bp",
	"match_size",
	"query_filename",
	"query_name",
	"query_md5",
	"query_bp",
	"query_size",
	"scaled",
	"position",
}

// CSV writes one row per match.
type CSV struct {
	w        io.WriteCloser
	csv      *csv.Writer
	err      error
	finished bool
}

// NewCSV creates a CSV sink and writes the header.
func NewCSV(w io.WriteCloser) *CSV {
	s := &CSV{w: w, csv: csv.NewWriter(w)}
	s.err = s.csv.Write(Columns)
	return s
}

// Match implements prefetch.Sink.
func (s *CSV) Match(_ context.Context, m *prefetch.Match) error {
	if s.err != nil {
		return s.err
	}

	c := m.Candidate
	filename := c.Signature.Filename
	if filename == "" {
		filename = c.Location
	}

	s.err = s.csv.Write([]string{
		u64(m.IntersectBP),
		u64(m.IntersectHashes),
		f64(m.Jaccard()),
		f64(m.MaxContainment()),
		f64(m.FQueryMatch()),
		f64(m.FMatchQuery()),
		filename,
		c.Signature.Name,
		c.Sketch.MD5(),
		u64(m.MatchBP()),
		u64(m.MatchSize),
		m.Query.Signature.Filename,
		m.Query.Signature.Name,
		m.Query.Sketch.MD5(),
		u64(m.QueryBP()),
		u64(m.QuerySize),
		u64(m.Scaled),
		strconv.Itoa(c.Position),
	})
	return s.err
}

// Finish implements prefetch.Sink.
func (s *CSV) Finish(context.Context, *prefetch.RunState) error {
	err := s.flush()
	s.finished = err == nil
	return err
}

func (s *CSV) flush() error {
	if s.err != nil {
		return s.err
	}
	s.csv.Flush()
	s.err = s.csv.Error()
	return s.err
}

// Close flushes pending rows and closes the underlying writer. If the
// search did not finish, an abortable writer is discarded instead.
func (s *CSV) Close() error {
	if aborted, err := abandon(s.w, s.finished); aborted {
		return err
	}
	err := s.flush()
	if cerr := s.w.Close(); err == nil {
		err = cerr
	}
	return err
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func f64(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var _ prefetch.Sink = (*CSV)(nil)
