package peg

// Scope is a persistent map from capture name to value.
//
// Binding a name returns a new Scope and leaves the receiver untouched. Later
// bindings shadow earlier ones with the same name. The zero value is an empty
// scope.
type Scope struct {
	head *binding
}

type binding struct {
	name  string
	value any
	next  *binding
}

// EmptyScope returns a scope with no captures.
func EmptyScope() Scope {
	return Scope{}
}

// Bind returns a scope in which name is bound to value.
func (s Scope) Bind(name string, value any) Scope {
	return Scope{head: &binding{name: name, value: value, next: s.head}}
}

// Lookup returns the most recent value bound to name.
func (s Scope) Lookup(name string) (any, bool) {
	for b := s.head; b != nil; b = b.next {
		if b.name == name {
			return b.value, true
		}
	}

	return nil, false
}

// Merge returns a scope holding the bindings of s overlaid with the bindings
// of other, in the order they were made in other.
func (s Scope) Merge(other Scope) Scope {
	if other.head == nil {
		return s
	}

	if s.head == nil {
		return other
	}

	var pending []*binding
	for b := other.head; b != nil; b = b.next {
		pending = append(pending, b)
	}

	merged := s
	for i := len(pending) - 1; i >= 0; i-- {
		merged = merged.Bind(pending[i].name, pending[i].value)
	}

	return merged
}

// Names returns the distinct bound names in the order they were first bound.
func (s Scope) Names() []string {
	var order []string
	for b := s.head; b != nil; b = b.next {
		order = append(order, b.name)
	}

	seen := make(map[string]struct{}, len(order))
	names := make([]string, 0, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		if _, ok := seen[order[i]]; ok {
			continue
		}

		seen[order[i]] = struct{}{}
		names = append(names, order[i])
	}

	return names
}

// Len returns the number of distinct bound names.
func (s Scope) Len() int {
	return len(s.Names())
}

// Map returns the visible bindings as a fresh map.
func (s Scope) Map() map[string]any {
	out := make(map[string]any)

	for b := s.head; b != nil; b = b.next {
		if _, ok := out[b.name]; !ok {
			out[b.name] = b.value
		}
	}

	return out
}
