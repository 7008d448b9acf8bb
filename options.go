package prefetch

// DefaultThresholdBP is the default minimum estimated overlap, in base pairs,
// for a candidate to be reported.
const DefaultThresholdBP = 50000

// DefaultProgressEvery is the default number of matches between progress notices.
const DefaultProgressEvery = 10

type options struct {
	thresholdBP      uint64
	scaled           uint64
	progressEvery    int
	strict           bool
	sinks            []Sink
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a search.
type Option func(*options)

// WithThresholdBP sets the minimum estimated overlap in base pairs.
// A candidate with zero shared hashes is never reported, even at 0.
func WithThresholdBP(bp uint64) Option {
	return func(o *options) {
		o.thresholdBP = bp
	}
}

// WithScaled sets a minimum working scale. A value coarser than the query's
// own resolution downsamples the query before the search starts; finer
// values are ignored.
func WithScaled(scaled uint64) Option {
	return func(o *options) {
		o.scaled = scaled
	}
}

// WithProgressEvery sets how many matches pass between progress notices.
// Values below 1 disable progress notices.
func WithProgressEvery(n int) Option {
	return func(o *options) {
		o.progressEvery = n
	}
}

// WithStrictLoading makes an unreadable candidate file fail the search
// instead of being skipped.
func WithStrictLoading(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithSinks sets the outputs that receive matches, in order.
func WithSinks(sinks ...Sink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sinks...)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring searches.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &prefetch.BasicMetricsCollector{}
//	summary, _ := prefetch.Search(ctx, query, src, prefetch.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("searched: %d, admitted: %d\n", stats.Candidates, stats.Admitted)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for a search.
// Pass nil to disable logging.
//
//	logger := prefetch.NewTextLogger(slog.LevelInfo)
//	summary, _ := prefetch.Search(ctx, query, src, prefetch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		thresholdBP:      DefaultThresholdBP,
		progressEvery:    DefaultProgressEvery,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
