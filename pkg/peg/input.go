package peg

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// LevelTrace is the slog level used for rule entry and exit logging.
const LevelTrace = slog.Level(-8)

// DefaultExcerptWidth is the widest source excerpt shown in a ParseError.
const DefaultExcerptWidth = 80

// endOfInput is the description used when the input runs out.
const endOfInput = "end of input"

// Stats collects counters from a single parse.
type Stats struct {
	// RuleCalls is the number of rule invocations.
	RuleCalls int
	// MaxDepth is the deepest rule nesting reached.
	MaxDepth int
	// Farthest is the deepest offset at which a match failed, or -1.
	Farthest int
}

// ParseOption configures a single parse.
type ParseOption func(*parseConfig)

type parseConfig struct {
	logger       *slog.Logger
	excerptWidth int
	stats        *Stats
}

// WithLogger logs rule entry and exit at LevelTrace.
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}

// WithExcerptWidth sets the maximum width of the excerpt in a ParseError.
func WithExcerptWidth(width int) ParseOption {
	return func(c *parseConfig) {
		c.excerptWidth = width
	}
}

// WithStats fills stats when the parse finishes.
func WithStats(stats *Stats) ParseOption {
	return func(c *parseConfig) {
		c.stats = stats
	}
}

// Input is the mutable state of one parse: the text, the farthest failure
// seen so far and trace bookkeeping. An Input must not be shared between
// concurrent parses.
type Input struct {
	text     string
	cfg      parseConfig
	trace    bool
	failAt   int
	expected map[string]struct{}
	quiet    int
	depth    int
	maxDepth int
	calls    int
}

// NewInput prepares text for matching.
func NewInput(text string, opts ...ParseOption) *Input {
	cfg := parseConfig{excerptWidth: DefaultExcerptWidth}
	for _, opt := range opts {
		opt(&cfg)
	}

	in := &Input{
		text:     text,
		cfg:      cfg,
		failAt:   -1,
		expected: make(map[string]struct{}),
	}

	if cfg.logger != nil {
		in.trace = cfg.logger.Enabled(context.Background(), LevelTrace)
	}

	return in
}

// Text returns the full input text.
func (in *Input) Text() string {
	return in.text
}

// Len returns the input length in bytes.
func (in *Input) Len() int {
	return len(in.text)
}

// Farthest returns the deepest offset at which a match failed and the sorted
// descriptions of what was expected there. The offset is -1 when nothing has
// failed.
func (in *Input) Farthest() (int, []string) {
	return in.failAt, slices.Sorted(maps.Keys(in.expected))
}

// fail records a failed expectation at offset.
func (in *Input) fail(offset int, want string) {
	if in.quiet > 0 {
		return
	}

	switch {
	case offset > in.failAt:
		in.failAt = offset
		clear(in.expected)
		in.expected[want] = struct{}{}
	case offset == in.failAt:
		in.expected[want] = struct{}{}
	}
}

func (in *Input) enter(rule string, at Cursor) {
	in.calls++
	in.depth++
	in.maxDepth = max(in.maxDepth, in.depth)

	if in.trace {
		in.cfg.logger.Log(context.Background(), LevelTrace, "enter rule",
			"rule", rule, "offset", at.offset, "depth", in.depth)
	}
}

func (in *Input) exit(rule string, end Cursor, matched bool) {
	if in.trace {
		in.cfg.logger.Log(context.Background(), LevelTrace, "exit rule",
			"rule", rule, "offset", end.offset, "depth", in.depth, "matched", matched)
	}

	in.depth--
}

func (in *Input) report() {
	if in.cfg.stats == nil {
		return
	}

	*in.cfg.stats = Stats{
		RuleCalls: in.calls,
		MaxDepth:  in.maxDepth,
		Farthest:  in.failAt,
	}
}

// Run matches e against a prefix of text, starting at offset zero with an
// empty scope. Unlike RuleTable.Parse it does not require the whole input to
// be consumed. An action fault is returned as an error.
func Run(e Expression, text string, opts ...ParseOption) (Result, Cursor, error) {
	return NewInput(text, opts...).run(e)
}

func (in *Input) run(e Expression) (res Result, end Cursor, err error) {
	defer func() {
		in.report()

		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}

			res, end, err = failure(), At(0), a.err
		}
	}()

	res, end = e.Match(in, At(0), EmptyScope())

	return res, end, nil
}
