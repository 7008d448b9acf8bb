package prefetch

import (
	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
)

// Candidate is one searched signature.
type Candidate struct {
	Signature *signature.Signature
	// Sketch is the selected comparable sketch at its native resolution.
	Sketch   *sketch.MinHash
	Location string
	// Position is the 0-based index among searched candidates.
	Position int
}

// Match is an admitted candidate and its overlap with the query.
type Match struct {
	Candidate *Candidate
	Query     *Query

	// IntersectHashes is the number of shared hashes at Scaled.
	IntersectHashes uint64
	// IntersectBP estimates the shared content in base pairs.
	IntersectBP uint64
	// MatchSize and QuerySize count hashes at Scaled.
	MatchSize uint64
	QuerySize uint64
	Scaled    uint64
}

// MatchBP estimates the candidate's size in base pairs.
func (m *Match) MatchBP() uint64 { return m.MatchSize * m.Scaled }

// QueryBP estimates the query's size in base pairs.
func (m *Match) QueryBP() uint64 { return m.QuerySize * m.Scaled }

// FQueryMatch is the fraction of the query found in the candidate.
func (m *Match) FQueryMatch() float64 { return ratio(m.IntersectHashes, m.QuerySize) }

// FMatchQuery is the fraction of the candidate found in the query.
func (m *Match) FMatchQuery() float64 { return ratio(m.IntersectHashes, m.MatchSize) }

// MaxContainment is the larger of FQueryMatch and FMatchQuery.
func (m *Match) MaxContainment() float64 {
	return ratio(m.IntersectHashes, min(m.QuerySize, m.MatchSize))
}

// Jaccard is the Jaccard similarity of query and candidate.
func (m *Match) Jaccard() float64 {
	return ratio(m.IntersectHashes, m.QuerySize+m.MatchSize-m.IntersectHashes)
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Accumulate scores candidate cand, given as q and c at the working scale
// (see Reconcile). Candidates sharing at least one hash and at least
// thresholdBP estimated base pairs with the query are admitted: their
// shared hashes move from the remaining set to the matched set and a Match
// is returned. Other candidates leave the state untouched and yield nil.
func (s *RunState) Accumulate(q, c *sketch.MinHash, cand *Candidate, thresholdBP uint64) *Match {
	shared := q.Intersection(c)
	n := uint64(shared.Size())
	if n == 0 {
		return nil
	}
	bp := n * s.workingScale
	if bp < thresholdBP {
		return nil
	}

	s.matchCount++
	s.matched.Merge(shared)
	s.remaining.Subtract(shared)

	return &Match{
		Candidate:       cand,
		Query:           s.query,
		IntersectHashes: n,
		IntersectBP:     bp,
		MatchSize:       uint64(c.Size()),
		QuerySize:       uint64(q.Size()),
		Scaled:          s.workingScale,
	}
}
