// Package depgraph builds the directed graph of schema-to-schema references:
// topological order, per-node depth, and cycle detection. It is a pure
// function of the edge set; malformed refs are rejected upstream by the
// builder, so there are no failure modes here.
package depgraph

import (
	"sort"
	"strings"

	"github.com/kolah/specir/internal/ir"
)

// Build constructs the dependency graph over the given schema components.
// Edges are one level of indirection: each component's own tree is walked
// for refs, referenced components are not re-walked.
func Build(components []*ir.SchemaComponent) *ir.DependencyGraph {
	names := make([]string, 0, len(components))
	known := make(map[string]bool, len(components))
	for _, c := range components {
		names = append(names, c.Name)
		known[c.Name] = true
	}

	deps := make(map[string][]string, len(components))
	for _, c := range components {
		deps[c.Name] = extractEdges(c.Schema, known)
	}

	g := &ir.DependencyGraph{Nodes: make(map[string]*ir.DependencyNode, len(names))}
	for _, n := range names {
		g.Nodes[n] = &ir.DependencyNode{Dependencies: deps[n]}
	}

	// Reverse edges, once all dependency sets are known.
	for _, n := range names {
		for _, d := range deps[n] {
			g.Nodes[d].Dependents = append(g.Nodes[d].Dependents, n)
		}
	}

	detectCycles(g, names, deps)
	orderAndDepth(g, names, deps)

	return g
}

// extractEdges collects every schema-component ref in s's tree, first-seen
// order, deduplicated. Refs to other component kinds or unknown names carry
// no edge.
func extractEdges(s *ir.Schema, known map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(node *ir.Schema)
	walk = func(node *ir.Schema) {
		if node == nil {
			return
		}
		if node.Ref != "" {
			if name, ok := ir.SchemaName(node.Ref); ok && known[name] && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
			return
		}
		for _, p := range node.Properties {
			walk(p.Schema)
		}
		walk(node.Items)
		for _, t := range node.TupleItems {
			walk(t)
		}
		walk(node.AdditionalProperties)
		for _, b := range node.AllOf {
			walk(b)
		}
		for _, b := range node.OneOf {
			walk(b)
		}
		for _, b := range node.AnyOf {
			walk(b)
		}
		walk(node.Not)
	}
	walk(s)
	return out
}

// detectCycles runs a DFS with an explicit recursion stack. Revisiting a
// node currently on the stack records the path slice from that node's first
// occurrence to the stack top; a self-reference yields a single-element
// cycle. Cycles are deduplicated by rotation-normalized key and every member
// is marked circular.
func detectCycles(g *ir.DependencyGraph, names []string, deps map[string][]string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	cycleKeys := make(map[string]bool)

	record := func(from string) {
		i := len(stack) - 1
		for i >= 0 && stack[i] != from {
			i--
		}
		if i < 0 {
			return
		}
		cycle := append([]string(nil), stack[i:]...)
		key := normalizeCycle(cycle)
		if cycleKeys[key] {
			return
		}
		cycleKeys[key] = true
		g.CircularReferences = append(g.CircularReferences, cycle)
		for _, m := range cycle {
			g.Nodes[m].IsCircular = true
		}
	}

	var visit func(n string)
	visit = func(n string) {
		visited[n] = true
		onStack[n] = true
		stack = append(stack, n)
		for _, d := range deps[n] {
			if onStack[d] {
				record(d)
			} else if !visited[d] {
				visit(d)
			}
		}
		stack = stack[:len(stack)-1]
		onStack[n] = false
	}

	for _, n := range names {
		if !visited[n] {
			visit(n)
		}
	}
}

// normalizeCycle keys a cycle independent of its rotation.
func normalizeCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	min := 0
	for i := range cycle {
		if cycle[i] < cycle[min] {
			min = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[min:]...)
	rotated = append(rotated, cycle[:min]...)
	return strings.Join(rotated, "\x00")
}

// orderAndDepth emits a topological order over the acyclic subset, assigning
// depth in the same pass (a node gets its depth only once every dependency
// has been emitted). Nodes caught up in cycles are appended afterwards with
// a best-effort depth: a not-yet-emitted cyclic dependency counts as depth
// zero. That depth is advisory, a generation-ordering hint only.
func orderAndDepth(g *ir.DependencyGraph, names []string, deps map[string][]string) {
	emitted := make(map[string]bool, len(names))

	for changed := true; changed; {
		changed = false
		for _, n := range names {
			if emitted[n] {
				continue
			}
			depth := 0
			ready := true
			for _, d := range deps[n] {
				if !emitted[d] {
					ready = false
					break
				}
				if g.Nodes[d].Depth+1 > depth {
					depth = g.Nodes[d].Depth + 1
				}
			}
			if !ready {
				continue
			}
			emitted[n] = true
			g.Nodes[n].Depth = depth
			g.TopologicalOrder = append(g.TopologicalOrder, n)
			changed = true
		}
	}

	// Remaining nodes depend on a cycle. Cycle members get to break the
	// tie among themselves: a circular node is ready once its unemitted
	// dependencies are all circular too. Non-circular stragglers still
	// wait for every dependency, so a node outside the cycle always lands
	// after the cycle it depends on. Rounds repeat until done.
	var remaining []string
	for _, n := range names {
		if !emitted[n] {
			remaining = append(remaining, n)
		}
	}
	for len(remaining) > 0 {
		progressed := false
		var next []string
		for _, n := range remaining {
			ready := true
			for _, d := range deps[n] {
				if emitted[d] {
					continue
				}
				if !g.Nodes[n].IsCircular || !g.Nodes[d].IsCircular {
					ready = false
					break
				}
			}
			if !ready {
				next = append(next, n)
				continue
			}
			depth := 0
			if len(deps[n]) > 0 {
				for _, d := range deps[n] {
					dd := 0
					if emitted[d] {
						dd = g.Nodes[d].Depth
					}
					if dd+1 > depth {
						depth = dd + 1
					}
				}
			}
			emitted[n] = true
			g.Nodes[n].Depth = depth
			g.TopologicalOrder = append(g.TopologicalOrder, n)
			progressed = true
		}
		if !progressed {
			// Cannot happen with a well-formed edge set; emit in name
			// order rather than loop forever.
			sort.Strings(next)
			for _, n := range next {
				emitted[n] = true
				g.Nodes[n].Depth = 0
				g.TopologicalOrder = append(g.TopologicalOrder, n)
			}
			next = nil
		}
		remaining = next
	}
}
