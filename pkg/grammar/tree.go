package grammar

// Node kinds as they appear in tree dumps.
const (
	KindGrammar    = "grammar"
	KindDefinition = "definition"
	KindChoice     = "choice"
	KindSequence   = "sequence"
	KindLabeled    = "labeled"
	KindPrefixed   = "prefixed"
	KindSuffixed   = "suffixed"
	KindLiteral    = "literal"
	KindCharClass  = "char_class"
	KindWildcard   = "wildcard"
	KindEpsilon    = "epsilon"
	KindRuleRef    = "rule_ref"
	KindGroup      = "group"
	KindAction     = "action"
)

// Kind returns the tree-dump kind of n.
func Kind(n Node) string {
	switch n.(type) {
	case *Grammar:
		return KindGrammar
	case *Definition:
		return KindDefinition
	case *Choice:
		return KindChoice
	case *Sequence:
		return KindSequence
	case *Labeled:
		return KindLabeled
	case *Prefixed:
		return KindPrefixed
	case *Suffixed:
		return KindSuffixed
	case *Literal:
		return KindLiteral
	case *CharClass:
		return KindCharClass
	case *Wildcard:
		return KindWildcard
	case *Epsilon:
		return KindEpsilon
	case *RuleRef:
		return KindRuleRef
	case *Group:
		return KindGroup
	case *Action:
		return KindAction
	default:
		return ""
	}
}

// Tree converts n into nested maps and slices tagged with a "kind" key. The
// result encodes directly as JSON or YAML and matches Schema. Source
// positions are left out.
func Tree(n Node) map[string]any {
	out := map[string]any{"kind": Kind(n)}

	switch x := n.(type) {
	case *Grammar:
		defs := make([]any, len(x.Definitions))
		for i, def := range x.Definitions {
			defs[i] = Tree(def)
		}

		out["definitions"] = defs
	case *Definition:
		comments := make([]any, len(x.Comments))
		for i, c := range x.Comments {
			comments[i] = c
		}

		out["name"] = x.Name
		out["comments"] = comments
		out["expr"] = Tree(x.Expr)
	case *Choice:
		out["alternatives"] = trees(x.Alternatives)
	case *Sequence:
		out["elements"] = trees(x.Elements)
	case *Labeled:
		out["name"] = x.Name
		out["expr"] = Tree(x.Expr)
	case *Prefixed:
		out["op"] = x.Op.Name()
		out["expr"] = Tree(x.Expr)
	case *Suffixed:
		out["op"] = x.Op.Name()
		out["expr"] = Tree(x.Expr)
	case *Literal:
		out["text"] = x.Text
	case *CharClass:
		out["chars"] = x.Chars
	case *RuleRef:
		out["name"] = x.Name
	case *Group:
		out["expr"] = Tree(x.Expr)
	case *Action:
		out["code"] = x.Code
		out["expr"] = Tree(x.Expr)
	}

	return out
}

func trees(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = Tree(n)
	}

	return out
}
