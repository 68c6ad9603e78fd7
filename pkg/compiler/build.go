package compiler

import (
	"fmt"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

func buildGrammar(bd peg.Bindings) (any, error) {
	head, err := capture[*grammar.Definition](bd, "head")
	if err != nil {
		return nil, err
	}

	g := &grammar.Grammar{Definitions: []*grammar.Definition{head}}

	for _, item := range peg.Extract(bd.Captures["tail"], 0) {
		def, ok := item.(*grammar.Definition)
		if !ok {
			return nil, fmt.Errorf("definition: unexpected value %T", item)
		}

		g.Definitions = append(g.Definitions, def)
	}

	return g, nil
}

func buildRule(bd peg.Bindings) (any, error) {
	name, err := capture[identifier](bd, "name")
	if err != nil {
		return nil, err
	}

	expr, err := capture[grammar.Node](bd, "content")
	if err != nil {
		return nil, err
	}

	def := &grammar.Definition{Name: name.name, Expr: expr, Pos: name.pos}

	for _, c := range peg.Compact(bd.Captures["comments"]) {
		if text, ok := c.(string); ok {
			def.Comments = append(def.Comments, text)
		}
	}

	return def, nil
}

func buildLine(bd peg.Bindings) (any, error) {
	expr, err := capture[grammar.Node](bd, "expr")
	if err != nil {
		return nil, err
	}

	code, ok := bd.Captures["code"].(string)
	if !ok {
		return expr, nil
	}

	return &grammar.Action{Expr: expr, Code: code, Pos: span(bd)}, nil
}

// buildChoice collapses a single alternative into itself.
func buildChoice(bd peg.Bindings) (any, error) {
	nodes, err := headTail(bd)
	if err != nil || len(nodes) == 1 {
		return first(nodes), err
	}

	return &grammar.Choice{Alternatives: nodes}, nil
}

// buildSequence collapses a single element into itself.
func buildSequence(bd peg.Bindings) (any, error) {
	nodes, err := headTail(bd)
	if err != nil || len(nodes) == 1 {
		return first(nodes), err
	}

	return &grammar.Sequence{Elements: nodes}, nil
}

func buildLabeled(bd peg.Bindings) (any, error) {
	name, err := capture[string](bd, "label")
	if err != nil {
		return nil, err
	}

	expr, err := capture[grammar.Node](bd, "expr")
	if err != nil {
		return nil, err
	}

	return &grammar.Labeled{Name: name, Expr: expr}, nil
}

func buildPrefixed(bd peg.Bindings) (any, error) {
	op, err := capture[string](bd, "op")
	if err != nil {
		return nil, err
	}

	expr, err := capture[grammar.Node](bd, "expr")
	if err != nil {
		return nil, err
	}

	p := &grammar.Prefixed{Op: grammar.Lookahead, Expr: expr}
	if op == "!" {
		p.Op = grammar.NegativeLookahead
	}

	return p, nil
}

func buildSuffixed(bd peg.Bindings) (any, error) {
	op, err := capture[string](bd, "op")
	if err != nil {
		return nil, err
	}

	expr, err := capture[grammar.Node](bd, "expr")
	if err != nil {
		return nil, err
	}

	s := &grammar.Suffixed{Expr: expr}

	switch op {
	case "?":
		s.Op = grammar.Optional
	case "*":
		s.Op = grammar.ZeroOrMore
	default:
		s.Op = grammar.OneOrMore
	}

	return s, nil
}

// buildGroup keeps parentheses only where they bound labels.
func buildGroup(bd peg.Bindings) (any, error) {
	sub, err := capture[grammar.Node](bd, "sub")
	if err != nil {
		return nil, err
	}

	if grammar.HasLabel(sub) {
		return &grammar.Group{Expr: sub}, nil
	}

	return sub, nil
}

func buildRuleRef(bd peg.Bindings) (any, error) {
	id, ok := bd.Match.(identifier)
	if !ok {
		return nil, fmt.Errorf("rule reference: unexpected value %T", bd.Match)
	}

	return &grammar.RuleRef{Name: id.name, Pos: id.pos}, nil
}

func headTail(bd peg.Bindings) ([]grammar.Node, error) {
	head, err := capture[grammar.Node](bd, "head")
	if err != nil {
		return nil, err
	}

	nodes := []grammar.Node{head}

	for _, item := range peg.Extract(bd.Captures["tail"], 0) {
		n, ok := item.(grammar.Node)
		if !ok {
			return nil, fmt.Errorf("expression: unexpected value %T", item)
		}

		nodes = append(nodes, n)
	}

	return nodes, nil
}

func first(nodes []grammar.Node) grammar.Node {
	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}

func capture[T any](bd peg.Bindings, name string) (T, error) {
	v, ok := bd.Captures[name].(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("%s: unexpected value %T", name, bd.Captures[name])
	}

	return v, nil
}
