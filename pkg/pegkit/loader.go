package pegkit

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/Sumatoshi-tech/pegkit/internal/cache"
	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/textutil"
)

// ErrBinaryGrammar is returned by Loader.Load for a file that is not text.
var ErrBinaryGrammar = errors.New("grammar file is binary")

// Default Loader cache limits.
const (
	DefaultCacheEntries = 128
	DefaultCacheSize    = 64 << 20
)

// cacheKey identifies a compiled rule table: the digest of the grammar text
// and start rule, and the evaluator value that compiled the actions.
type cacheKey struct {
	digest [sha256.Size]byte
	eval   action.Evaluator
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	entries int
	size    int64
	opts    []Option
}

// WithCacheEntries bounds the number of cached parsers.
func WithCacheEntries(n int) LoaderOption {
	return func(c *loaderConfig) {
		c.entries = n
	}
}

// WithCacheSize bounds the total grammar text held by cached parsers.
func WithCacheSize(bytes int64) LoaderOption {
	return func(c *loaderConfig) {
		c.size = bytes
	}
}

// WithParserOptions sets the options every parser is compiled with.
func WithParserOptions(opts ...Option) LoaderOption {
	return func(c *loaderConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// Loader compiles grammars and caches the rule tables. Entries are keyed by
// the grammar text, the start rule and the evaluator value, so two distinct
// evaluators never share compiled actions. Each call returns a Parser with its
// own options: the input limit, the excerpt width and the logging, tracing and
// metrics sinks are never taken from the cache. Evaluators whose dynamic type
// is not comparable are compiled on every call.
type Loader struct {
	opts    []Option
	parsers *cache.LRU[cacheKey, *Parser]
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := loaderConfig{entries: DefaultCacheEntries, size: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Loader{
		opts: cfg.opts,
		parsers: cache.New(
			cache.WithMaxEntries[cacheKey, *Parser](cfg.entries),
			cache.WithMaxSize[cacheKey](cfg.size, func(p *Parser) int64 { return p.size }),
		),
	}
}

// Load reads and compiles the grammar file at path.
func (l *Loader) Load(ctx context.Context, path string, opts ...Option) (*Parser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}

	if textutil.IsBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryGrammar, path)
	}

	return l.Compile(ctx, path, string(data), opts...)
}

// Compile returns the parser for text, compiling it on a cache miss. name
// identifies the grammar in logs. opts are applied after the Loader's own.
func (l *Loader) Compile(ctx context.Context, name, text string, opts ...Option) (*Parser, error) {
	o := newOptions(append(append([]Option(nil), l.opts...), opts...))

	key, cacheable := keyOf(text, o)
	if cacheable {
		if p, ok := l.parsers.Get(key); ok {
			return p.with(o), nil
		}
	}

	p, err := compile(ctx, text, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if !cacheable {
		o.logger.DebugContext(ctx, "grammar not cached", "name", name, "evaluator", action.NameOf(o.eval))

		return p, nil
	}

	l.parsers.Put(key, p)
	o.logger.DebugContext(ctx, "grammar cached", "name", name, "start", p.Start())

	return p, nil
}

// Stats returns the cache counters.
func (l *Loader) Stats() cache.Stats {
	return l.parsers.Stats()
}

func keyOf(text string, o options) (cacheKey, bool) {
	if o.eval == nil || !reflect.TypeOf(o.eval).Comparable() {
		return cacheKey{}, false
	}

	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(o.start))

	key := cacheKey{eval: o.eval}
	h.Sum(key.digest[:0])

	return key, true
}
