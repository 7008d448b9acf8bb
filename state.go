package prefetch

import (
	"fmt"

	"github.com/hupe1980/prefetch/sketch"
)

// RunState is the mutable state of one search.
//
// At every point between candidates the query view is partitioned into
// matched and remaining hashes, and the working scale never decreases.
// RunState is not safe for concurrent use.
type RunState struct {
	query        *Query
	workingScale uint64
	queryView    *sketch.MinHash
	matched      *sketch.MinHash
	remaining    *sketch.MinHash
	matchCount   int
}

// NewRunState prepares a search for q. minScaled, when coarser than the
// query's own resolution, becomes the initial working scale.
func NewRunState(q *Query, minScaled uint64) (*RunState, error) {
	if !q.Sketch.IsScaled() {
		return nil, ErrUnsupportedSketchKind
	}

	scale := max(q.Sketch.Scaled(), minScaled)
	view, err := q.Sketch.Downsample(scale)
	if err != nil {
		return nil, err
	}

	s := &RunState{
		query:        q,
		workingScale: scale,
		queryView:    view,
		matched:      view.CopyAndClear(),
		remaining:    view.Copy(),
	}
	if view.IsEmpty() {
		return s, ErrEmptyQuery
	}
	return s, nil
}

// Query returns the query the state was created for.
func (s *RunState) Query() *Query { return s.query }

// WorkingScale returns the scale all comparisons currently run at.
func (s *RunState) WorkingScale() uint64 { return s.workingScale }

// QueryView returns the query sketch at the working scale.
// Callers must not modify it.
func (s *RunState) QueryView() *sketch.MinHash { return s.queryView }

// Matched returns the query hashes found in at least one match.
// Callers must not modify it.
func (s *RunState) Matched() *sketch.MinHash { return s.matched }

// Remaining returns the query hashes not found in any match so far.
// Callers must not modify it.
func (s *RunState) Remaining() *sketch.MinHash { return s.remaining }

// MatchCount returns the number of matches admitted so far.
func (s *RunState) MatchCount() int { return s.matchCount }

// Reconcile brings the query view and candidate c to a common scale.
// When c is coarser than the working scale, the working scale is raised
// to c's and the query view and aggregates are downsampled to it
// (coarsened is true). When c is finer, only a downsampled copy of c is
// returned.
func (s *RunState) Reconcile(c *sketch.MinHash) (q, cand *sketch.MinHash, coarsened bool, err error) {
	cs := c.Scaled()
	switch {
	case cs > s.workingScale:
		if err := s.coarsen(cs); err != nil {
			return nil, nil, false, err
		}
		if s.queryView.IsEmpty() {
			return nil, nil, true, ErrEmptyQuery
		}
		return s.queryView, c, true, nil
	case cs < s.workingScale:
		cand, err := c.Downsample(s.workingScale)
		if err != nil {
			return nil, nil, false, fmt.Errorf("downsample candidate: %w", err)
		}
		return s.queryView, cand, false, nil
	default:
		return s.queryView, c, false, nil
	}
}

func (s *RunState) coarsen(scale uint64) error {
	view, err := s.query.Sketch.Downsample(scale)
	if err != nil {
		return err
	}
	matched, err := s.matched.Downsample(scale)
	if err != nil {
		return err
	}
	remaining, err := s.remaining.Downsample(scale)
	if err != nil {
		return err
	}

	s.workingScale = scale
	s.queryView = view
	s.matched = matched
	s.remaining = remaining
	return nil
}
