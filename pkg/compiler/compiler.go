// Package compiler turns grammar text into a grammar syntax tree.
//
// The grammar description language is itself defined as a peg rule table,
// so the same runtime that executes compiled grammars also parses them.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// ErrInvalidGrammar reports grammar text that does not follow the grammar
// description syntax. It wraps the *peg.ParseError describing the failure.
var ErrInvalidGrammar = errors.New("invalid grammar")

// Option configures Compile.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	excerptWidth int
}

// WithLogger traces rule entry and exit of the bootstrap grammar at
// peg.LevelTrace.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExcerptWidth sets the width of the excerpt in compile errors.
func WithExcerptWidth(width int) Option {
	return func(o *options) {
		o.excerptWidth = width
	}
}

var rules = sync.OnceValue(func() *peg.RuleTable {
	table, err := bootstrap().Build("Grammar")
	if err != nil {
		panic("compiler: bootstrap grammar: " + err.Error())
	}

	return table
})

// Rules returns the rule table of the grammar description language.
func Rules() *peg.RuleTable {
	return rules()
}

// Compile parses grammar text into a syntax tree.
func Compile(text string, opts ...Option) (*grammar.Grammar, error) {
	o := options{excerptWidth: peg.DefaultExcerptWidth}
	for _, opt := range opts {
		opt(&o)
	}

	parseOpts := []peg.ParseOption{peg.WithExcerptWidth(o.excerptWidth)}
	if o.logger != nil {
		parseOpts = append(parseOpts, peg.WithLogger(o.logger))
	}

	value, err := Rules().Parse(text, parseOpts...)
	if err != nil {
		var perr *peg.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGrammar, err)
		}

		return nil, fmt.Errorf("compile grammar: %w", err)
	}

	g, ok := value.(*grammar.Grammar)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected value %T", ErrInvalidGrammar, value)
	}

	return g, nil
}
