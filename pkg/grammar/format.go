package grammar

import "strings"

// Indentation of rule bodies and block actions.
const (
	bodyIndent  = "  "
	blockIndent = "    "
)

// Binding precedence, loosest first.
const (
	precChoice = iota
	precSequence
	precLabel
	precPrefix
	precSuffix
	precPrimary
)

// Format renders g as canonical grammar text. Compiling the result yields a
// tree equal to g.
func Format(g *Grammar) string {
	defs := make([]string, len(g.Definitions))
	for i, def := range g.Definitions {
		defs[i] = FormatDefinition(def)
	}

	return strings.Join(defs, "\n\n") + "\n"
}

// FormatDefinition renders one rule definition, comments included, without a
// trailing newline.
func FormatDefinition(def *Definition) string {
	var sb strings.Builder

	for _, comment := range def.Comments {
		sb.WriteString("# ")
		sb.WriteString(comment)
		sb.WriteByte('\n')
	}

	sb.WriteString(def.Name)
	sb.WriteString(":")

	for i, alt := range Alternatives(def.Expr) {
		sb.WriteString("\n" + bodyIndent)

		if i > 0 {
			sb.WriteString("/ ")
		}

		sb.WriteString(formatLine(alt))
	}

	return sb.String()
}

// FormatNode renders an expression in inline grammar notation.
func FormatNode(n Node) string {
	return formatExpr(n, precChoice)
}

func formatLine(n Node) string {
	action, ok := n.(*Action)
	if !ok {
		return formatExpr(n, precChoice)
	}

	head := formatExpr(action.Expr, precChoice) + " ->"
	if !strings.Contains(action.Code, "\n") {
		return head + " " + action.Code
	}

	lines := strings.Split(action.Code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""

			continue
		}

		lines[i] = blockIndent + line
	}

	return head + "\n" + strings.Join(lines, "\n")
}

func precedence(n Node) int {
	switch n.(type) {
	case *Choice, *Action:
		return precChoice
	case *Sequence:
		return precSequence
	case *Labeled:
		return precLabel
	case *Prefixed:
		return precPrefix
	case *Suffixed:
		return precSuffix
	default:
		return precPrimary
	}
}

func formatExpr(n Node, minPrec int) string {
	if precedence(n) < minPrec {
		return "(" + formatExpr(n, precChoice) + ")"
	}

	switch x := n.(type) {
	case *Choice:
		parts := make([]string, len(x.Alternatives))
		for i, alt := range x.Alternatives {
			parts[i] = formatExpr(alt, precSequence)
		}

		return strings.Join(parts, " / ")
	case *Sequence:
		parts := make([]string, len(x.Elements))
		for i, elem := range x.Elements {
			parts[i] = formatExpr(elem, precLabel)
		}

		return strings.Join(parts, " ")
	case *Action:
		return formatExpr(x.Expr, precSequence) + " -> " + x.Code
	case *Labeled:
		return x.Name + ":" + formatExpr(x.Expr, precPrefix)
	case *Prefixed:
		return x.Op.String() + formatExpr(x.Expr, precSuffix)
	case *Suffixed:
		return formatExpr(x.Expr, precPrimary) + x.Op.String()
	case *Group:
		return "(" + formatExpr(x.Expr, precChoice) + ")"
	case *Literal:
		return Quote(x.Text)
	case *CharClass:
		return "[" + x.Chars + "]"
	case *Wildcard:
		return "."
	case *Epsilon:
		return "~"
	case *RuleRef:
		return x.Name
	case *Definition:
		return FormatDefinition(x)
	case *Grammar:
		return Format(x)
	default:
		return ""
	}
}

// Quote renders s as a grammar string literal. Single quotes are used unless
// s contains a single quote and no double quote.
func Quote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var sb strings.Builder

	sb.WriteByte(quote)

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case quote:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}

	sb.WriteByte(quote)

	return sb.String()
}
