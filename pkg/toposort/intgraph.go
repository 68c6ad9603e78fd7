package toposort

import "slices"

// IntGraph is a directed graph over dense integer IDs. Cycles are allowed.
type IntGraph struct {
	// out[u] holds v for each edge u -> v, in insertion order.
	out      [][]int
	inDegree []int
}

// NewIntGraph creates an empty IntGraph.
func NewIntGraph() *IntGraph {
	return &IntGraph{}
}

// Len returns the number of nodes.
func (g *IntGraph) Len() int {
	return len(g.out)
}

// EnsureCapacity grows the graph to hold at least n nodes.
func (g *IntGraph) EnsureCapacity(n int) {
	for len(g.out) < n {
		g.out = append(g.out, nil)
		g.inDegree = append(g.inDegree, 0)
	}
}

// AddEdge adds u -> v and reports whether the edge is new.
func (g *IntGraph) AddEdge(u, v int) bool {
	g.EnsureCapacity(max(u, v) + 1)

	if slices.Contains(g.out[u], v) {
		return false
	}

	g.out[u] = append(g.out[u], v)
	g.inDegree[v]++

	return true
}

// HasEdge reports whether u -> v exists.
func (g *IntGraph) HasEdge(u, v int) bool {
	return u < len(g.out) && slices.Contains(g.out[u], v)
}

// Successors returns the targets of edges leaving u.
func (g *IntGraph) Successors(u int) []int {
	if u < 0 || u >= len(g.out) {
		return nil
	}

	return g.out[u]
}

// TopoSort orders the nodes with Kahn's algorithm, taking the lowest ready ID
// first. It reports false when a cycle leaves nodes unsorted.
func (g *IntGraph) TopoSort() ([]int, bool) {
	n := len(g.out)
	inDegree := slices.Clone(g.inDegree)

	var ready []int

	for u := range n {
		if inDegree[u] == 0 {
			ready = append(ready, u)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		u := ready[0]
		ready = ready[1:]
		order = append(order, u)

		for _, v := range g.out[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				i, _ := slices.BinarySearch(ready, v)
				ready = slices.Insert(ready, i, v)
			}
		}
	}

	return order, len(order) == n
}

// Reachable marks every node reachable from start, start included.
func (g *IntGraph) Reachable(start int) []bool {
	seen := make([]bool, len(g.out))
	if start < 0 || start >= len(g.out) {
		return seen
	}

	stack := []int{start}
	seen[start] = true

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, v := range g.out[u] {
			if !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}

	return seen
}

// Components returns the strongly connected components in reverse
// topological order: a component comes after every component it reaches.
// IDs within a component are sorted.
func (g *IntGraph) Components() [][]int {
	t := tarjan{
		g:       g,
		index:   make([]int, len(g.out)),
		low:     make([]int, len(g.out)),
		onStack: make([]bool, len(g.out)),
	}

	for u := range t.index {
		t.index[u] = -1
	}

	for u := range g.out {
		if t.index[u] < 0 {
			t.visit(u)
		}
	}

	return t.comps
}

type tarjan struct {
	g       *IntGraph
	next    int
	index   []int
	low     []int
	onStack []bool
	stack   []int
	comps   [][]int
}

func (t *tarjan) visit(u int) {
	t.index[u] = t.next
	t.low[u] = t.next
	t.next++
	t.stack = append(t.stack, u)
	t.onStack[u] = true

	for _, v := range t.g.out[u] {
		switch {
		case t.index[v] < 0:
			t.visit(v)
			t.low[u] = min(t.low[u], t.low[v])
		case t.onStack[v]:
			t.low[u] = min(t.low[u], t.index[v])
		}
	}

	if t.low[u] != t.index[u] {
		return
	}

	var comp []int

	for {
		v := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[v] = false

		comp = append(comp, v)
		if v == u {
			break
		}
	}

	slices.Sort(comp)
	t.comps = append(t.comps, comp)
}

// FindCycle returns a shortest path start -> ... -> start, without repeating
// start at the end, or nil when start is on no cycle.
func (g *IntGraph) FindCycle(start int) []int {
	if start < 0 || start >= len(g.out) {
		return nil
	}

	parent := map[int]int{start: -1}
	queue := []int{start}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range g.out[u] {
			if v == start {
				var path []int
				for cur := u; cur != -1; cur = parent[cur] {
					path = append(path, cur)
				}

				slices.Reverse(path)

				return path
			}

			if _, seen := parent[v]; !seen {
				parent[v] = u
				queue = append(queue, v)
			}
		}
	}

	return nil
}
