package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/prefetch/signature"
)

// queryNameWidth is how much of the query name is shown in notices.
const queryNameWidth = 30

// Logger wraps slog.Logger with prefetch-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithQuery adds the query name field to the logger.
func (l *Logger) WithQuery(q *Query) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", q.Name()),
	}
}

// WithLocation adds a candidate location field to the logger.
func (l *Logger) WithLocation(loc string) *Logger {
	return &Logger{
		Logger: l.Logger.With("location", loc),
	}
}

// LogSelection logs an explicit k-mer size selection.
func (l *Logger) LogSelection(ctx context.Context, ksize uint32) {
	l.InfoContext(ctx, fmt.Sprintf("selecting specified query k=%d", ksize),
		"ksize", ksize,
	)
}

// LogQuery logs the selected query sketch.
func (l *Logger) LogQuery(ctx context.Context, q *Query) {
	l.InfoContext(ctx, fmt.Sprintf("loaded query: %s (k=%d, %s)",
		signature.Truncate(q.Name(), queryNameWidth), q.Ksize(), q.Moltype()),
		"ksize", q.Ksize(),
		"moltype", string(q.Moltype()),
		"hashes", q.Sketch.Size(),
		"scaled", q.Sketch.Scaled(),
	)
}

// LogDownsample logs a downsampling of the query view.
func (l *Logger) LogDownsample(ctx context.Context, from, to uint64) {
	l.InfoContext(ctx, fmt.Sprintf("downsampling query from scaled=%d to %d", from, to),
		"from", from,
		"to", to,
	)
}

// LogWorkingScale logs the resolution all comparisons run at.
func (l *Logger) LogWorkingScale(ctx context.Context, scaled uint64) {
	l.InfoContext(ctx, fmt.Sprintf("all sketches will be downsampled to scaled=%d", scaled),
		"scaled", scaled,
	)
}

// LogNoOutputs warns that a search will not save anything.
func (l *Logger) LogNoOutputs(ctx context.Context) {
	l.WarnContext(ctx, "WARNING: no output(s) specified! Nothing will be saved from this prefetch!")
}

// LogProgress logs the running match count.
func (l *Logger) LogProgress(ctx context.Context, matches int) {
	l.InfoContext(ctx, fmt.Sprintf("total of %d matching signatures so far.", matches),
		"matches", matches,
	)
}

// LogSkip logs a candidate that was not searched.
func (l *Logger) LogSkip(ctx context.Context, location string, reason SkipReason, err error) {
	if err != nil {
		l.WarnContext(ctx, "skipping candidates",
			"location", location,
			"reason", string(reason),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "skipping candidate",
			"location", location,
			"reason", string(reason),
		)
	}
}

// LogSummary logs the final counts of a search.
func (l *Logger) LogSummary(ctx context.Context, s *Summary) {
	l.InfoContext(ctx, fmt.Sprintf("total of %d matching signatures.", s.Matches),
		"matches", s.Matches,
		"searched", s.Searched,
	)
	l.InfoContext(ctx, fmt.Sprintf("of %d distinct query hashes, %d were found in matches above threshold.",
		s.QueryHashes, s.MatchedHashes),
		"query_hashes", s.QueryHashes,
		"matched_hashes", s.MatchedHashes,
	)
	l.InfoContext(ctx, fmt.Sprintf("a total of %d query hashes remain unmatched.", s.RemainingHashes),
		"remaining_hashes", s.RemainingHashes,
	)
}
