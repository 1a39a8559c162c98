package ir

// DependencyGraph is the directed graph of $ref-induced edges between schema
// components, keyed by component name.
type DependencyGraph struct {
	Nodes map[string]*DependencyNode `json:"nodes"`

	// TopologicalOrder lists every node, dependencies before dependents.
	// Members of cycles are appended after the acyclic subset with a
	// best-effort depth; their position is advisory only.
	TopologicalOrder []string `json:"topologicalOrder"`

	// CircularReferences holds one inner slice per detected cycle, as the
	// ordered sequence of names that form it.
	CircularReferences [][]string `json:"circularReferences,omitempty"`
}

type DependencyNode struct {
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
	Depth        int      `json:"depth"`
	IsCircular   bool     `json:"isCircular,omitempty"`
}

// Node returns the graph node for name, or nil.
func (g *DependencyGraph) Node(name string) *DependencyNode {
	if g == nil {
		return nil
	}
	return g.Nodes[name]
}
