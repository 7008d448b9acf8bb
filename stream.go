package prefetch

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/hupe1980/prefetch/source"
)

// SkipReason says why a candidate was not searched.
type SkipReason string

const (
	// SkipIncompatible marks signatures without a sketch of the query's
	// k-mer size, alphabet and seed.
	SkipIncompatible SkipReason = "incompatible"
	// SkipNumSketch marks signatures whose only compatible sketches are num sketches.
	SkipNumSketch SkipReason = "num_sketch"
	// SkipLoadError marks candidate files that could not be loaded.
	SkipLoadError SkipReason = "load_error"
)

// Source enumerates candidate files in a stable order.
type Source interface {
	// Inputs returns the number of configured candidate locations.
	Inputs() int
	// Entries yields candidate files. A non-nil error ends the search.
	Entries(ctx context.Context) iter.Seq2[source.Entry, error]
}

// Sink receives the results of a search.
type Sink interface {
	// Match is called for every admitted candidate, in arrival order.
	Match(ctx context.Context, m *Match) error
	// Finish is called once after the last candidate with the final state.
	Finish(ctx context.Context, state *RunState) error
	// Close releases the sink's resources.
	Close() error
}

// Summary reports the outcome of a search.
type Summary struct {
	// Searched is the number of candidate sketches compared with the query.
	Searched int
	// Matches is the number of admitted candidates.
	Matches int
	// QueryHashes, MatchedHashes and RemainingHashes are counted at WorkingScale.
	QueryHashes     int
	MatchedHashes   int
	RemainingHashes int
	WorkingScale    uint64
	// Skipped counts signatures or files not searched, by reason.
	Skipped map[SkipReason]int
	// Loaded is the number of candidate files read without error.
	Loaded int
}

// Search scans every candidate of src against q in a single pass.
func Search(ctx context.Context, q *Query, src Source, optFns ...Option) (summary *Summary, err error) {
	o := applyOptions(optFns)

	start := time.Now()
	defer func() {
		o.metricsCollector.RecordSearch(time.Since(start), err)
	}()

	if src == nil || src.Inputs() == 0 {
		return nil, ErrNoSources
	}

	state, err := NewRunState(q, o.scaled)
	if state != nil && state.WorkingScale() != q.Sketch.Scaled() {
		o.logger.LogDownsample(ctx, q.Sketch.Scaled(), state.WorkingScale())
	}
	if err != nil {
		return nil, err
	}
	o.logger.LogWorkingScale(ctx, state.WorkingScale())

	if len(o.sinks) == 0 {
		o.logger.LogNoOutputs(ctx)
	}

	summary = &Summary{Skipped: make(map[SkipReason]int)}

	for entry, err := range src.Entries(ctx) {
		if err != nil {
			return nil, err
		}

		o.metricsCollector.RecordLoad(entry.Bytes, entry.Err)
		if entry.Err != nil {
			if o.strict {
				return nil, fmt.Errorf("%w: %w", ErrLoadFailed, entry.Err)
			}
			summary.Skipped[SkipLoadError]++
			o.logger.LogSkip(ctx, entry.Location, SkipLoadError, entry.Err)
			continue
		}
		summary.Loaded++

		for _, sig := range entry.Signatures {
			mh, reason, ok := SelectComparable(sig, q)
			if !ok {
				summary.Skipped[reason]++
				o.metricsCollector.RecordSkip(reason)
				o.logger.LogSkip(ctx, entry.Location, reason, nil)
				continue
			}

			prev := state.WorkingScale()
			qv, c, coarsened, err := state.Reconcile(mh)
			if coarsened {
				o.metricsCollector.RecordDownsample(prev, state.WorkingScale())
				o.logger.LogDownsample(ctx, prev, state.WorkingScale())
			}
			if err != nil {
				return nil, err
			}

			cand := &Candidate{
				Signature: sig,
				Sketch:    mh,
				Location:  entry.Location,
				Position:  summary.Searched,
			}
			summary.Searched++

			m := state.Accumulate(qv, c, cand, o.thresholdBP)
			o.metricsCollector.RecordCandidate(m != nil)
			if m == nil {
				continue
			}

			for _, s := range o.sinks {
				if err := s.Match(ctx, m); err != nil {
					return nil, fmt.Errorf("write match: %w", err)
				}
			}

			if o.progressEvery > 0 && state.MatchCount()%o.progressEvery == 0 {
				o.logger.LogProgress(ctx, state.MatchCount())
			}
		}
	}

	if summary.Searched == 0 {
		return nil, ErrNoSearchableSignatures
	}

	for _, s := range o.sinks {
		if err := s.Finish(ctx, state); err != nil {
			return nil, fmt.Errorf("finish output: %w", err)
		}
	}

	summary.Matches = state.MatchCount()
	summary.QueryHashes = state.QueryView().Size()
	summary.MatchedHashes = state.Matched().Size()
	summary.RemainingHashes = state.Remaining().Size()
	summary.WorkingScale = state.WorkingScale()

	o.logger.LogSummary(ctx, summary)
	return summary, nil
}
