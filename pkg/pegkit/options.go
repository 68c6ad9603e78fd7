package pegkit

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

const tracerName = "pegkit"

// defaultEvaluator is shared by every Compile without WithEvaluator, so that
// Loader entries compiled with the default are reused.
var defaultEvaluator = sync.OnceValue(func() action.Evaluator { return action.Builtins() })

// Option configures Compile and the parsers it returns.
type Option func(*options)

type options struct {
	eval         action.Evaluator
	start        string
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *observability.ParseMetrics
	maxInput     int64
	excerptWidth int
}

func newOptions(opts []Option) options {
	o := options{
		eval:         defaultEvaluator(),
		excerptWidth: peg.DefaultExcerptWidth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = observability.DiscardLogger()
	}

	if o.tracer == nil {
		o.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	return o
}

// WithEvaluator sets the evaluator that compiles action code. The default is
// action.Builtins.
func WithEvaluator(e action.Evaluator) Option {
	return func(o *options) {
		o.eval = e
	}
}

// WithStart overrides the start rule.
func WithStart(name string) Option {
	return func(o *options) {
		o.start = name
	}
}

// WithLogger sets the logger. Rule tracing is emitted at peg.LevelTrace.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer records a span per compile and per parse.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMetrics records compile and parse metrics.
func WithMetrics(m *observability.ParseMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMaxInputSize rejects parse input longer than n bytes. Zero disables
// the limit.
func WithMaxInputSize(n int64) Option {
	return func(o *options) {
		o.maxInput = n
	}
}

// WithExcerptWidth sets the excerpt width of parse errors.
func WithExcerptWidth(width int) Option {
	return func(o *options) {
		o.excerptWidth = width
	}
}
