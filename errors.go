package prefetch

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/prefetch/sketch"
)

var (
	// ErrNoSources is returned when a search is given no candidate locations at all.
	ErrNoSources = errors.New("no databases or signatures to search")

	// ErrNoSearchableSignatures is returned when candidates were given but
	// none of them held a sketch comparable with the query.
	ErrNoSearchableSignatures = errors.New("no signatures to search")

	// ErrEmptyQuery is returned when the query has no hashes at the working scale.
	ErrEmptyQuery = errors.New("no query hashes")

	// ErrAmbiguousSelection is returned when more than one query sketch matches the selection.
	ErrAmbiguousSelection = errors.New("multiple query sketches match")

	// ErrNotFound is returned when no query sketch matches the selection.
	ErrNotFound = errors.New("no matching query sketch")

	// ErrUnsupportedSketchKind is returned for fixed-size (num) query sketches.
	ErrUnsupportedSketchKind = errors.New("query sketch must be scaled, not num")

	// ErrLoadFailed is returned in strict mode when a candidate file cannot be loaded.
	ErrLoadFailed = errors.New("failed to load candidates")
)

// SelectionError describes a query selection that did not yield exactly one
// scaled sketch.
//
// The sentinel (ErrNotFound, ErrAmbiguousSelection or
// ErrUnsupportedSketchKind) can be matched with errors.Is.
type SelectionError struct {
	Ksize   uint32
	Moltype sketch.Moltype
	// Available lists the k-mer sizes present in the query file.
	Available []uint32
	cause     error
}

func (e *SelectionError) Error() string {
	var b strings.Builder
	b.WriteString(e.cause.Error())

	var sel []string
	if e.Ksize != 0 {
		sel = append(sel, fmt.Sprintf("k=%d", e.Ksize))
	}
	if e.Moltype != "" {
		sel = append(sel, "moltype="+string(e.Moltype))
	}
	if len(sel) > 0 {
		b.WriteString(" (" + strings.Join(sel, ", ") + ")")
	}

	if len(e.Available) > 0 && errors.Is(e.cause, ErrAmbiguousSelection) {
		ks := slices.Clone(e.Available)
		slices.Sort(ks)
		ks = slices.Compact(ks)
		parts := make([]string, len(ks))
		for i, k := range ks {
			parts[i] = fmt.Sprint(k)
		}
		b.WriteString("; available k sizes: " + strings.Join(parts, ", "))
	}
	return b.String()
}

func (e *SelectionError) Unwrap() error { return e.cause }
