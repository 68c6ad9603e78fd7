// Package grammar defines the syntax tree of a PEG grammar description,
// together with tools to walk, format, encode and validate it.
package grammar

// Node is a node of the grammar syntax tree.
type Node interface {
	node()
}

// Span is a half-open byte range of the grammar text.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Grammar is a whole grammar: an ordered list of rule definitions.
type Grammar struct {
	Definitions []*Definition
}

// Definition names a rule and gives its body.
type Definition struct {
	Name     string
	Expr     Node
	Comments []string
	Pos      Span
}

// Choice is an ordered choice between alternatives.
type Choice struct {
	Alternatives []Node
}

// Sequence matches its elements one after another.
type Sequence struct {
	Elements []Node
}

// Labeled binds the value of Expr to Name.
type Labeled struct {
	Name string
	Expr Node
}

// PrefixOp is a lookahead operator.
type PrefixOp int

// Prefix operators.
const (
	Lookahead PrefixOp = iota
	NegativeLookahead
)

func (op PrefixOp) String() string {
	if op == NegativeLookahead {
		return "!"
	}

	return "&"
}

// Name returns the operator's name as used in tree dumps.
func (op PrefixOp) Name() string {
	if op == NegativeLookahead {
		return "negative_lookahead"
	}

	return "lookahead"
}

// Prefixed applies a lookahead operator to Expr.
type Prefixed struct {
	Op   PrefixOp
	Expr Node
}

// SuffixOp is a repetition operator.
type SuffixOp int

// Suffix operators.
const (
	Optional SuffixOp = iota
	ZeroOrMore
	OneOrMore
)

func (op SuffixOp) String() string {
	switch op {
	case ZeroOrMore:
		return "*"
	case OneOrMore:
		return "+"
	default:
		return "?"
	}
}

// Name returns the operator's name as used in tree dumps.
func (op SuffixOp) Name() string {
	switch op {
	case ZeroOrMore:
		return "zero_or_more"
	case OneOrMore:
		return "one_or_more"
	default:
		return "optional"
	}
}

// Suffixed applies a repetition operator to Expr.
type Suffixed struct {
	Expr Node
	Op   SuffixOp
}

// Literal matches Text exactly. Text holds the unescaped string.
type Literal struct {
	Text string
}

// CharClass matches one character of a bracket class. Chars is the class
// body as written, without brackets.
type CharClass struct {
	Chars string
}

// Wildcard matches any single character.
type Wildcard struct{}

// Epsilon always matches and consumes nothing.
type Epsilon struct{}

// RuleRef invokes the rule called Name.
type RuleRef struct {
	Name string
	Pos  Span
}

// Group is a parenthesized expression. The compiler keeps a group only when
// its contents carry a label.
type Group struct {
	Expr Node
}

// Action attaches semantic action code to Expr. Code is opaque text.
type Action struct {
	Expr Node
	Code string
	Pos  Span
}

func (*Grammar) node()    {}
func (*Definition) node() {}
func (*Choice) node()     {}
func (*Sequence) node()   {}
func (*Labeled) node()    {}
func (*Prefixed) node()   {}
func (*Suffixed) node()   {}
func (*Literal) node()    {}
func (*CharClass) node()  {}
func (*Wildcard) node()   {}
func (*Epsilon) node()    {}
func (*RuleRef) node()    {}
func (*Group) node()      {}
func (*Action) node()     {}

// Lookup returns the definition called name.
func (g *Grammar) Lookup(name string) (*Definition, bool) {
	for _, def := range g.Definitions {
		if def.Name == name {
			return def, true
		}
	}

	return nil, false
}

// Names returns the rule names in definition order.
func (g *Grammar) Names() []string {
	names := make([]string, len(g.Definitions))
	for i, def := range g.Definitions {
		names[i] = def.Name
	}

	return names
}
