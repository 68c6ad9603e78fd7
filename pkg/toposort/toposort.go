// Package toposort provides a named directed graph with topological ordering,
// cycle search and Graphviz output. It backs the rule dependency graph of a
// grammar.
package toposort

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Graph is a directed graph of named nodes. Node order is insertion order.
type Graph struct {
	symbols *SymbolTable
	edges   *IntGraph
}

// NewGraph initializes a new Graph.
func NewGraph() *Graph {
	return &Graph{
		symbols: NewSymbolTable(),
		edges:   NewIntGraph(),
	}
}

// AddNode inserts a node and reports whether it is new.
func (g *Graph) AddNode(name string) bool {
	if _, ok := g.symbols.Lookup(name); ok {
		return false
	}

	g.edges.EnsureCapacity(g.symbols.Intern(name) + 1)

	return true
}

// AddEdge inserts from -> to, adding missing nodes, and reports whether the
// edge is new.
func (g *Graph) AddEdge(from, to string) bool {
	g.AddNode(from)
	g.AddNode(to)

	u, _ := g.symbols.Lookup(from)
	v, _ := g.symbols.Lookup(to)

	return g.edges.AddEdge(u, v)
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	u, ok1 := g.symbols.Lookup(from)
	v, ok2 := g.symbols.Lookup(to)

	return ok1 && ok2 && g.edges.HasEdge(u, v)
}

// Nodes returns the node names in insertion order.
func (g *Graph) Nodes() []string {
	return g.names(nil)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return g.symbols.Len()
}

// Toposort sorts the nodes so that every edge points forward. Ties go to the
// node inserted first. ok is false when the graph has a cycle; the order then
// omits the nodes on or behind it.
func (g *Graph) Toposort() (order []string, ok bool) {
	ids, ok := g.edges.TopoSort()

	return g.resolve(ids), ok
}

// DependencyOrder returns every node such that, outside of cycles, a node
// comes after all the nodes it points to. Members of a cycle are adjacent.
func (g *Graph) DependencyOrder() []string {
	var order []string

	for _, comp := range g.edges.Components() {
		order = append(order, g.resolve(comp)...)
	}

	return order
}

// Cycles returns the node sets of every cycle: components of more than one
// node, and nodes with an edge to themselves.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string

	for _, comp := range g.edges.Components() {
		if len(comp) > 1 || g.edges.HasEdge(comp[0], comp[0]) {
			cycles = append(cycles, g.resolve(comp))
		}
	}

	return cycles
}

// FindCycle returns a shortest cycle through seed as a path that starts at
// seed, or nil if there is none.
func (g *Graph) FindCycle(seed string) []string {
	id, ok := g.symbols.Lookup(seed)
	if !ok {
		return nil
	}

	return g.resolve(g.edges.FindCycle(id))
}

// Reachable returns the nodes reachable from start, start included, in
// insertion order.
func (g *Graph) Reachable(start string) []string {
	id, ok := g.symbols.Lookup(start)
	if !ok {
		return nil
	}

	seen := g.edges.Reachable(id)

	return g.names(func(id int) bool { return seen[id] })
}

// FindParents returns the sorted sources of edges into to.
func (g *Graph) FindParents(to string) []string {
	v, ok := g.symbols.Lookup(to)
	if !ok {
		return nil
	}

	parents := g.names(func(u int) bool { return g.edges.HasEdge(u, v) })
	slices.Sort(parents)

	return parents
}

// FindChildren returns the sorted targets of edges out of from.
func (g *Graph) FindChildren(from string) []string {
	u, ok := g.symbols.Lookup(from)
	if !ok {
		return nil
	}

	children := g.resolve(g.edges.Successors(u))
	slices.Sort(children)

	return children
}

// Serialize renders the graph in Graphviz DOT. Nodes listed in highlight are
// drawn bold.
func (g *Graph) Serialize(name string, highlight ...string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %s {\n", strconv.Quote(name))

	for _, node := range g.Nodes() {
		attrs := ""
		if slices.Contains(highlight, node) {
			attrs = " [style=bold]"
		}

		fmt.Fprintf(&sb, "  %s%s;\n", strconv.Quote(node), attrs)
	}

	for u := range g.edges.Len() {
		for _, v := range g.edges.Successors(u) {
			fmt.Fprintf(&sb, "  %s -> %s;\n",
				strconv.Quote(g.symbols.Resolve(u)), strconv.Quote(g.symbols.Resolve(v)))
		}
	}

	sb.WriteString("}\n")

	return sb.String()
}

func (g *Graph) resolve(ids []int) []string {
	if ids == nil {
		return nil
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.symbols.Resolve(id)
	}

	return out
}

func (g *Graph) names(keep func(int) bool) []string {
	out := make([]string, 0, g.symbols.Len())

	for id := range g.symbols.Len() {
		if keep == nil || keep(id) {
			out = append(out, g.symbols.Resolve(id))
		}
	}

	return out
}
