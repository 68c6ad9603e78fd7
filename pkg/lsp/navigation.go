package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/textutil"
)

type snippet struct {
	label  string
	insert string
	detail string
}

var operatorSnippets = []snippet{
	{"rule", "${1:Name}:\n  ${2}", "Rule definition"},
	{"/", "/ ${1}", "Ordered choice, on a continuation line"},
	{"label:", "${1:name}:${2}", "Bind the value of an expression to a name"},
	{"&", "&${1}", "Positive lookahead"},
	{"!", "!${1}", "Negative lookahead"},
	{"?", "?", "Optional"},
	{"*", "*", "Zero or more"},
	{"+", "+", "One or more"},
	{"'…'", "'${1}'", "Literal"},
	{"[…]", "[${1:a-z}]", "Character class"},
	{"(…)", "(${1})", "Group"},
	{".", ".", "Any character"},
	{"~", "~", "Match nothing, always succeed"},
	{"->", "-> ${1:text}", "Action"},
}

func completionItem(label string, kind protocol.CompletionItemKind, detail string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  label,
		Kind:   &kind,
		Detail: &detail,
	}
}

func (srv *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := make([]protocol.CompletionItem, 0, len(operatorSnippets))

	if doc, ok := srv.store.Get(params.TextDocument.URI); ok && doc.Grammar != nil {
		for _, def := range doc.Grammar.Definitions {
			items = append(items, completionItem(def.Name, protocol.CompletionItemKindFunction, summary(def)))
		}
	}

	format := protocol.InsertTextFormatSnippet

	for _, sn := range operatorSnippets {
		item := completionItem(sn.label, protocol.CompletionItemKindSnippet, sn.detail)
		item.InsertText = &sn.insert
		item.InsertTextFormat = &format
		items = append(items, item)
	}

	return protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, def, word := srv.lookup(params.TextDocument.URI, params.Position)
	if def == nil {
		return nil, nil // LSP protocol expects nil hover when nothing is under the cursor.
	}

	var sb strings.Builder

	for _, c := range def.Comments {
		sb.WriteString(c)
		sb.WriteString("\n")
	}

	if len(def.Comments) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("```peg\n")
	bare := *def
	bare.Comments = nil
	sb.WriteString(grammar.FormatDefinition(&bare))
	sb.WriteString("\n```")

	rng := toRange(doc.Text, word)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: sb.String(),
		},
		Range: &rng,
	}, nil
}

func (srv *Server) definition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc, def, _ := srv.lookup(params.TextDocument.URI, params.Position)
	if def == nil {
		return nil, nil
	}

	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: toRange(doc.Text, def.Pos),
	}, nil
}

// lookup finds the rule whose name is under pos.
func (srv *Server) lookup(uri string, pos protocol.Position) (*Document, *grammar.Definition, grammar.Span) {
	doc, ok := srv.store.Get(uri)
	if !ok || doc.Grammar == nil {
		return nil, nil, grammar.Span{}
	}

	word, start, end := textutil.WordAt(doc.Text, toOffset(doc.Text, pos))
	if word == "" {
		return nil, nil, grammar.Span{}
	}

	def, ok := doc.Grammar.Lookup(word)
	if !ok {
		return nil, nil, grammar.Span{}
	}

	return doc, def, grammar.Span{Start: start, End: end}
}

func summary(def *grammar.Definition) string {
	if len(def.Comments) > 0 {
		return def.Comments[0]
	}

	return grammar.FormatNode(def.Expr)
}
