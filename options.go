package phrasego

import (
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/phrasego/cache"
	"github.com/hupe1980/phrasego/codec"
	"github.com/hupe1980/phrasego/internal/nbest"
	"github.com/hupe1980/phrasego/internal/search"
	"github.com/hupe1980/phrasego/resource"
)

// Algorithm selects the search strategy.
type Algorithm = search.Algorithm

// Search algorithms.
const (
	Normal               = search.Normal
	Batch                = search.Batch
	CubePruningMiniStack = search.CubePruningMiniStack
)

// Params are the search parameters.
type Params = search.Params

// Stats counts the work done by one search.
type Stats = search.Stats

// DefaultParams returns the default search parameters.
func DefaultParams() Params { return search.DefaultParams() }

// ParseAlgorithm resolves an algorithm name such as "normal", "batch" or
// "cube-pruning".
func ParseAlgorithm(name string) (Algorithm, error) {
	a, err := search.ParseAlgorithm(name)
	return a, translateError(err)
}

// PostProcessor rewrites rendered target text, e.g. feature.JoinCompounds.
type PostProcessor func(string) string

type options struct {
	algorithm        Algorithm
	params           Params
	nbest            int
	distinct         bool
	nbestFactor      int
	reportScore      bool
	threads          int
	queueLimit       int
	cpuAffinity      bool
	resource         *resource.Controller
	cache            cache.Cache
	codec            codec.Codec
	fingerprint      string
	postProcessors   []PostProcessor
	metricsCollector MetricsCollector
	logger           *Logger
	tracer           trace.Tracer
}

// Option configures a Decoder.
type Option func(*options)

// WithAlgorithm selects the search strategy. The default is Normal.
func WithAlgorithm(a Algorithm) Option {
	return func(o *options) {
		o.algorithm = a
	}
}

// WithParams replaces the search parameters.
func WithParams(p Params) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithBeam sets the number of hypotheses kept per stack. 0 disables
// histogram pruning.
func WithBeam(beam int) Option {
	return func(o *options) {
		o.params.Beam = beam
	}
}

// WithPopLimit sets the number of successors popped per cube pruning stack.
func WithPopLimit(n int) Option {
	return func(o *options) {
		o.params.PopLimit = n
	}
}

// WithDistortionLimit bounds reordering jumps. A negative limit disables it.
func WithDistortionLimit(n int) Option {
	return func(o *options) {
		o.params.DistortionLimit = n
	}
}

// WithNBest requests the n best translations in addition to the 1-best.
// If distinct is set, translations with an already emitted text are skipped.
func WithNBest(n int, distinct bool) Option {
	return func(o *options) {
		o.nbest = n
		o.distinct = distinct
	}
}

// WithNBestFactor caps the n-best paths examined at n*factor.
// 0 examines paths until n are accepted or none are left.
func WithNBestFactor(factor int) Option {
	return func(o *options) {
		o.nbestFactor = factor
	}
}

// WithReportScore prefixes the 1-best line with its score.
func WithReportScore(enabled bool) Option {
	return func(o *options) {
		o.reportScore = enabled
	}
}

// WithThreads configures the worker pool used by TranslateAll.
// threads <= 0 uses one worker per CPU. queueLimit 0 leaves the queue
// unbounded.
func WithThreads(threads, queueLimit int) Option {
	return func(o *options) {
		o.threads = threads
		o.queueLimit = queueLimit
	}
}

// WithCPUAffinity pins worker i to CPU i modulo the CPU count (Linux only).
func WithCPUAffinity(enabled bool) Option {
	return func(o *options) {
		o.cpuAffinity = enabled
	}
}

// WithResourceController shares a hypothesis budget, a search concurrency
// limit and a sentence rate between decoders.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithCache stores results in c, encoded with cd. If cd is nil,
// codec.Default is used. The decoder does not close c.
func WithCache(c cache.Cache, cd codec.Codec) Option {
	return func(o *options) {
		if cd == nil {
			cd = codec.Default
		}
		o.cache = c
		o.codec = cd
	}
}

// WithFingerprint identifies the models behind the decoder so that cached
// results of different models never mix, e.g. the model file paths.
func WithFingerprint(parts ...string) Option {
	return func(o *options) {
		o.fingerprint = strings.Join(parts, "\x00")
	}
}

// WithPostProcessor appends a rewrite applied to every rendered translation.
func WithPostProcessor(p PostProcessor) Option {
	return func(o *options) {
		if p != nil {
			o.postProcessors = append(o.postProcessors, p)
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &phrasego.BasicMetricsCollector{}
//	d, _ := phrasego.New(table, scorer, phrasego.WithMetricsCollector(metrics))
//	// ... use d ...
//	stats := metrics.GetStats()
//	fmt.Printf("Sentences: %d, Avg latency: %dns\n", stats.DecodeCount, stats.DecodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := phrasego.NewJSONLogger(slog.LevelInfo)
//	d, _ := phrasego.New(table, scorer, phrasego.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTracerProvider traces each decode with a span from tp. By default the
// global provider is used, which is a no-op unless the host installs one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp.Tracer(tracerName)
	}
}

const tracerName = "github.com/hupe1980/phrasego"

func applyOptions(optFns []Option) options {
	o := options{
		algorithm:        Normal,
		params:           search.DefaultParams(),
		nbestFactor:      nbest.DefaultFactor,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}

func (o *options) validate() error {
	switch {
	case !o.algorithm.Valid():
		return &ConfigError{Field: "algorithm", Value: o.algorithm, cause: ErrUnknownAlgorithm}
	case o.nbest < 0:
		return &ConfigError{Field: "nbest", Value: o.nbest, cause: ErrInvalidNBest}
	case o.nbestFactor < 0:
		return &ConfigError{Field: "nbest_factor", Value: o.nbestFactor, cause: ErrInvalidNBest}
	case o.queueLimit < 0:
		return &ConfigError{Field: "queue_limit", Value: o.queueLimit, cause: ErrInvalidConfig}
	case o.params.Diversity < 0:
		return &ConfigError{Field: "diversity", Value: o.params.Diversity, cause: ErrInvalidConfig}
	}
	return nil
}
