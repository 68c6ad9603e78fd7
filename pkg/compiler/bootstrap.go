package compiler

import (
	"strings"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// identifier is the value of RuleIdentifier.
type identifier struct {
	name string
	pos  grammar.Span
}

// bootstrap defines the grammar description language.
func bootstrap() *peg.Builder {
	b := peg.NewBuilder()
	r := b.Ref

	lit := peg.Literal
	tok := func(s string) peg.Expression { return peg.Token(peg.Literal(s)) }
	class := func(body string) peg.Expression { return peg.Class(peg.MustCharSet(body)) }
	spaces := peg.Token(peg.ZeroOrMore(r("SPACE")))
	gap := peg.Token(peg.OneOrMore(r("SPACE")))
	restOfLine := peg.ZeroOrMore(peg.Sequence(peg.Reject(r("NEWLINE")), peg.Advance()))

	b.MustDefine("Grammar", peg.Action(peg.Sequence(
		peg.Label("head", r("Rule")),
		peg.Label("tail", peg.ZeroOrMore(peg.Sequence(peg.Token(r("NEWLINE")), r("Rule")))),
		peg.Token(peg.ZeroOrMore(r("WHITESPACE"))),
	), buildGrammar))

	b.MustDefine("Rule", peg.Action(peg.Sequence(
		peg.Label("comments", peg.ZeroOrMore(peg.Choice(r("Comment"), r("EMPTY_LINE")))),
		peg.Label("name", r("RuleIdentifier")),
		tok(":"),
		spaces,
		r("INDENT"),
		peg.Label("content", r("RuleContent")),
	), buildRule))

	b.MustDefine("RuleContent", peg.Action(peg.Sequence(
		peg.Label("head", r("RuleLine")),
		peg.Label("tail", peg.ZeroOrMore(peg.Sequence(
			peg.Token(r("NEWLINE")), spaces, tok("/"), gap, r("RuleLine"),
		))),
	), buildChoice))

	b.MustDefine("RuleLine", peg.Action(peg.Sequence(
		peg.Label("expr", r("Expression")),
		peg.Optional(peg.Sequence(gap, peg.Label("code", r("Code")))),
		spaces,
	), buildLine))

	b.MustDefine("Expression", peg.Action(peg.Sequence(
		peg.Label("head", r("Sequence")),
		peg.Label("tail", peg.ZeroOrMore(peg.Sequence(gap, tok("/"), gap, r("Sequence")))),
	), buildChoice))

	b.MustDefine("Sequence", peg.Action(peg.Sequence(
		peg.Label("head", r("Single")),
		peg.Label("tail", peg.ZeroOrMore(peg.Sequence(gap, r("Single")))),
	), buildSequence))

	b.MustDefine("Single", peg.Choice(
		peg.Action(peg.Sequence(
			peg.Label("label", r("LabelIdentifier")),
			tok(":"),
			peg.Label("expr", r("Prefix")),
		), buildLabeled),
		r("Prefix"),
	))

	b.MustDefine("Prefix", peg.Choice(
		peg.Action(peg.Sequence(peg.Label("op", class("&!")), peg.Label("expr", r("Suffix"))), buildPrefixed),
		r("Suffix"),
	))

	b.MustDefine("Suffix", peg.Choice(
		peg.Action(peg.Sequence(peg.Label("expr", r("Primary")), peg.Label("op", class("?*+"))), buildSuffixed),
		r("Primary"),
	))

	b.MustDefine("Primary", peg.Choice(
		peg.Action(peg.Sequence(tok("("), peg.Label("sub", r("SubExpression")), tok(")")), buildGroup),
		peg.Action(r("RuleIdentifier"), buildRuleRef),
		r("String"),
		r("Class"),
		peg.Action(lit("."), func(peg.Bindings) (any, error) { return &grammar.Wildcard{}, nil }),
		peg.Action(lit("~"), func(peg.Bindings) (any, error) { return &grammar.Epsilon{}, nil }),
	))

	b.MustDefine("SubExpression", peg.Action(peg.Sequence(
		spaces, peg.Label("sub", r("Expression")), spaces,
	), func(bd peg.Bindings) (any, error) { return bd.Captures["sub"], nil }))

	b.MustDefine("Code", peg.Choice(r("CodeBlock"), r("CodeInline")))

	b.MustDefine("CodeBlock", peg.Action(peg.Sequence(
		tok("->"),
		spaces,
		peg.Token(r("DOUBLE_INDENT")),
		peg.Reject(r("WHITESPACE")),
		peg.Label("first", peg.Advance()),
		peg.Label("rest", peg.ZeroOrMore(peg.Choice(
			peg.Sequence(peg.Reject(r("NEWLINE")), peg.Advance()),
			peg.Sequence(
				peg.ZeroOrMore(peg.Sequence(peg.Reject(r("DOUBLE_INDENT")), r("WHITESPACE"))),
				r("DOUBLE_INDENT"),
			),
		))),
	), func(bd peg.Bindings) (any, error) {
		return strings.TrimSpace(peg.Join(bd.Captures["first"]) + peg.Join(bd.Captures["rest"])), nil
	}))

	b.MustDefine("CodeInline", peg.Action(peg.Sequence(
		tok("->"),
		gap,
		peg.Label("text", peg.OneOrMore(peg.Sequence(peg.Reject(r("NEWLINE")), peg.Advance()))),
	), func(bd peg.Bindings) (any, error) {
		return strings.TrimSpace(peg.Join(bd.Captures["text"])), nil
	}))

	b.MustDefine("Comment", peg.Action(peg.Sequence(
		tok("#"),
		peg.Label("content", restOfLine),
		peg.Token(r("NEWLINE")),
	), func(bd peg.Bindings) (any, error) {
		return strings.TrimSpace(peg.Join(bd.Captures["content"])), nil
	}))

	b.MustDefine("RuleIdentifier", peg.Action(
		peg.Sequence(class("A-Z"), peg.ZeroOrMore(class("_a-zA-Z"))),
		func(bd peg.Bindings) (any, error) {
			return identifier{name: bd.Text, pos: span(bd)}, nil
		},
	))

	b.MustDefine("LabelIdentifier", peg.Action(peg.OneOrMore(class("_a-z")), func(bd peg.Bindings) (any, error) {
		return bd.Text, nil
	}))

	b.MustDefine("String", peg.Action(peg.Choice(quoted(`'`), quoted(`"`)), func(bd peg.Bindings) (any, error) {
		return &grammar.Literal{Text: peg.Unescape(peg.Join(bd.Captures["content"]))}, nil
	}))

	b.MustDefine("Class", peg.Action(peg.Sequence(
		tok("["),
		peg.Label("content", escaped("]")),
		tok("]"),
	), func(bd peg.Bindings) (any, error) {
		return &grammar.CharClass{Chars: peg.Join(bd.Captures["content"])}, nil
	}))

	b.MustDefine("NEWLINE", peg.Action(
		peg.Choice(peg.Sequence(lit("\r"), peg.Optional(lit("\n"))), lit("\n")),
		func(peg.Bindings) (any, error) { return "\n", nil },
	))
	b.MustDefine("SPACE", tok(" "))
	b.MustDefine("INDENT", peg.Token(peg.Sequence(r("NEWLINE"), r("SPACE"), r("SPACE"))))
	b.MustDefine("DOUBLE_INDENT", peg.Action(
		peg.Sequence(r("INDENT"), r("SPACE"), r("SPACE")),
		func(peg.Bindings) (any, error) { return "\n", nil },
	))
	b.MustDefine("EMPTY_LINE", peg.Token(peg.Sequence(peg.ZeroOrMore(r("SPACE")), r("NEWLINE"))))
	b.MustDefine("WHITESPACE", peg.Choice(r("NEWLINE"), r("SPACE")))

	return b
}

// quoted matches a string delimited by q with backslash escapes.
func quoted(q string) peg.Expression {
	return peg.Sequence(
		peg.Token(peg.Literal(q)),
		peg.Label("content", escaped(q)),
		peg.Token(peg.Literal(q)),
	)
}

// escaped matches characters up to an unescaped end delimiter.
func escaped(end string) peg.Expression {
	return peg.ZeroOrMore(peg.Sequence(
		peg.Choice(peg.Literal(`\`), peg.Reject(peg.Literal(end))),
		peg.Advance(),
	))
}

func span(bd peg.Bindings) grammar.Span {
	return grammar.Span{Start: bd.Span.Start, End: bd.Span.End}
}
