package prefetch

import (
	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sketch"
)

// Selection restricts which sketch of a query file is used.
// Zero values mean "any".
type Selection struct {
	Ksize   uint32
	Moltype sketch.Moltype
}

func (sel Selection) matches(mh *sketch.MinHash) bool {
	if sel.Ksize != 0 && mh.Ksize() != sel.Ksize {
		return false
	}
	return sel.Moltype == "" || mh.Moltype() == sel.Moltype
}

// Query is the selected query sketch and the signature it came from.
type Query struct {
	Signature *signature.Signature
	Sketch    *sketch.MinHash
}

// Ksize returns the k-mer size of the query sketch.
func (q *Query) Ksize() uint32 { return q.Sketch.Ksize() }

// Moltype returns the molecule alphabet of the query sketch.
func (q *Query) Moltype() sketch.Moltype { return q.Sketch.Moltype() }

// Name returns the display name of the query.
func (q *Query) Name() string { return q.Signature.DisplayName() }

// SelectQuery picks the single sketch across sigs that satisfies sel.
func SelectQuery(sigs []*signature.Signature, sel Selection) (*Query, error) {
	var (
		found     []*Query
		available []uint32
	)
	for _, s := range sigs {
		for _, mh := range s.Sketches {
			if sel.Moltype == "" || mh.Moltype() == sel.Moltype {
				available = append(available, mh.Ksize())
			}
			if sel.matches(mh) {
				found = append(found, &Query{Signature: s, Sketch: mh})
			}
		}
	}

	switch {
	case len(found) == 0:
		return nil, &SelectionError{Ksize: sel.Ksize, Moltype: sel.Moltype, Available: available, cause: ErrNotFound}
	case len(found) > 1:
		return nil, &SelectionError{Ksize: sel.Ksize, Moltype: sel.Moltype, Available: available, cause: ErrAmbiguousSelection}
	case !found[0].Sketch.IsScaled():
		return nil, &SelectionError{Ksize: sel.Ksize, Moltype: sel.Moltype, cause: ErrUnsupportedSketchKind}
	}
	return found[0], nil
}

// SelectComparable returns the first sketch of sig that is scaled and
// compatible with the query. When there is none, reason says why.
func SelectComparable(sig *signature.Signature, q *Query) (mh *sketch.MinHash, reason SkipReason, ok bool) {
	reason = SkipIncompatible
	for _, c := range sig.Sketches {
		if !c.IsCompatible(q.Sketch) {
			continue
		}
		if !c.IsScaled() {
			reason = SkipNumSketch
			continue
		}
		return c, "", true
	}
	return nil, reason, false
}
