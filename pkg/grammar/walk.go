package grammar

// Walk traverses the tree rooted at n in depth-first order. fn is called for
// each node; returning false skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Children returns the direct children of n.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *Grammar:
		out := make([]Node, len(x.Definitions))
		for i, def := range x.Definitions {
			out[i] = def
		}

		return out
	case *Definition:
		return []Node{x.Expr}
	case *Choice:
		return x.Alternatives
	case *Sequence:
		return x.Elements
	case *Labeled:
		return []Node{x.Expr}
	case *Prefixed:
		return []Node{x.Expr}
	case *Suffixed:
		return []Node{x.Expr}
	case *Group:
		return []Node{x.Expr}
	case *Action:
		return []Node{x.Expr}
	default:
		return nil
	}
}

// References returns every rule reference in n, in source order.
func References(n Node) []*RuleRef {
	var refs []*RuleRef

	Walk(n, func(n Node) bool {
		if ref, ok := n.(*RuleRef); ok {
			refs = append(refs, ref)
		}

		return true
	})

	return refs
}

// HasLabel reports whether any node in n is a label.
func HasLabel(n Node) bool {
	found := false

	Walk(n, func(n Node) bool {
		if _, ok := n.(*Labeled); ok {
			found = true
		}

		return !found
	})

	return found
}

// Alternatives returns the alternatives of a rule body: the choices of a
// top-level Choice, or the body itself.
func Alternatives(n Node) []Node {
	if c, ok := n.(*Choice); ok {
		return c.Alternatives
	}

	return []Node{n}
}
