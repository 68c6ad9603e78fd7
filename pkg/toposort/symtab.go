package toposort

// SymbolTable maps node names to dense integer IDs in insertion order.
type SymbolTable struct {
	ids   map[string]int
	names []string
}

// NewSymbolTable creates an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{ids: make(map[string]int)}
}

// Intern returns the ID of name, assigning the next free ID on first sight.
func (t *SymbolTable) Intern(name string) int {
	if id, ok := t.ids[name]; ok {
		return id
	}

	id := len(t.names)
	t.names = append(t.names, name)
	t.ids[name] = id

	return id
}

// Lookup returns the ID of name without interning it.
func (t *SymbolTable) Lookup(name string) (int, bool) {
	id, ok := t.ids[name]

	return id, ok
}

// Resolve returns the name of id, or "" for an unknown ID.
func (t *SymbolTable) Resolve(id int) string {
	if id < 0 || id >= len(t.names) {
		return ""
	}

	return t.names[id]
}

// Len returns the number of interned names.
func (t *SymbolTable) Len() int {
	return len(t.names)
}
