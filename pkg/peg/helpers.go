package peg

import (
	"fmt"
	"strings"
)

// Join concatenates a value and, recursively, every element of nested lists
// into one string. nil joins to the empty string.
func Join(v any) string {
	var sb strings.Builder

	join(&sb, v)

	return sb.String()
}

func join(sb *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
	case string:
		sb.WriteString(x)
	case []any:
		for _, elem := range x {
			join(sb, elem)
		}
	case []string:
		for _, elem := range x {
			sb.WriteString(elem)
		}
	case fmt.Stringer:
		sb.WriteString(x.String())
	default:
		fmt.Fprint(sb, x)
	}
}

// Extract returns element index of each list in list. Elements that are not
// lists, or are too short, yield nil.
func Extract(list any, index int) []any {
	items, _ := list.([]any)
	out := make([]any, 0, len(items))

	for _, item := range items {
		sub, ok := item.([]any)
		if !ok || index < 0 || index >= len(sub) {
			out = append(out, nil)

			continue
		}

		out = append(out, sub[index])
	}

	return out
}

// Compact returns the elements of list that are not nil, false, zero or the
// empty string.
func Compact(list any) []any {
	items, _ := list.([]any)
	out := make([]any, 0, len(items))

	for _, item := range items {
		switch x := item.(type) {
		case nil:
			continue
		case string:
			if x == "" {
				continue
			}
		case bool:
			if !x {
				continue
			}
		case int:
			if x == 0 {
				continue
			}
		case float64:
			if x == 0 {
				continue
			}
		}

		out = append(out, item)
	}

	return out
}

// Unescape replaces the escapes \n \r \' \" and \\ in s. Other backslash
// sequences are kept as written.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])

			continue
		}

		switch s[i+1] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case '\'', '"', '\\':
			sb.WriteByte(s[i+1])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i+1])
		}

		i++
	}

	return sb.String()
}
