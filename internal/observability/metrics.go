package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "pegkit.requests.total"
	metricRequestDuration  = "pegkit.request.duration.seconds"
	metricErrorsTotal      = "pegkit.errors.total"
	metricInflightRequests = "pegkit.inflight.requests"

	metricCompileTotal    = "pegkit.compile.total"
	metricCompileDuration = "pegkit.compile.duration.seconds"
	metricParseTotal      = "pegkit.parse.total"
	metricParseDuration   = "pegkit.parse.duration.seconds"
	metricParseInputSize  = "pegkit.parse.input.bytes"

	attrOp      = "op"
	attrStatus  = "status"
	attrOutcome = "outcome"

	// StatusOK and StatusError are the status values of RecordRequest.
	StatusOK    = "ok"
	StatusError = "error"
)

// Outcomes of compile and parse operations.
const (
	OutcomeOK         = "ok"
	OutcomeNoMatch    = "no_match"
	OutcomeInvalid    = "invalid"
	OutcomeActionFail = "action_error"
	OutcomeTooLarge   = "too_large"
)

// durationBucketBoundaries covers 100µs to 10s: most parses finish in well
// under a millisecond, pathological backtracking takes seconds.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

var sizeBucketBoundaries = []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216}

// REDMetrics holds the Rate, Error and Duration instruments for requests.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments from mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records a completed request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// ParseMetrics holds instruments for grammar compiles and parses.
type ParseMetrics struct {
	compileTotal    metric.Int64Counter
	compileDuration metric.Float64Histogram
	parseTotal      metric.Int64Counter
	parseDuration   metric.Float64Histogram
	inputSize       metric.Int64Histogram
}

// NewParseMetrics creates compile and parse instruments from mt.
func NewParseMetrics(mt metric.Meter) (*ParseMetrics, error) {
	compileTotal, err := mt.Int64Counter(metricCompileTotal,
		metric.WithDescription("Grammar compilations by outcome"),
		metric.WithUnit("{compile}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCompileTotal, err)
	}

	compileDuration, err := mt.Float64Histogram(metricCompileDuration,
		metric.WithDescription("Grammar compilation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCompileDuration, err)
	}

	parseTotal, err := mt.Int64Counter(metricParseTotal,
		metric.WithDescription("Parses by outcome"),
		metric.WithUnit("{parse}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricParseTotal, err)
	}

	parseDuration, err := mt.Float64Histogram(metricParseDuration,
		metric.WithDescription("Parse duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricParseDuration, err)
	}

	inputSize, err := mt.Int64Histogram(metricParseInputSize,
		metric.WithDescription("Parse input size in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricParseInputSize, err)
	}

	return &ParseMetrics{
		compileTotal:    compileTotal,
		compileDuration: compileDuration,
		parseTotal:      parseTotal,
		parseDuration:   parseDuration,
		inputSize:       inputSize,
	}, nil
}

// RecordCompile records one grammar compilation.
func (pm *ParseMetrics) RecordCompile(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))

	pm.compileTotal.Add(ctx, 1, attrs)
	pm.compileDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordParse records one parse of size bytes.
func (pm *ParseMetrics) RecordParse(ctx context.Context, outcome string, size int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))

	pm.parseTotal.Add(ctx, 1, attrs)
	pm.parseDuration.Record(ctx, duration.Seconds(), attrs)
	pm.inputSize.Record(ctx, int64(size))
}
