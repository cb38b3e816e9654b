// Package graph implements the dependency-graph engine at the core of
// pkgtree: construction from inventory records, include/exclude filtering,
// edge reversal, deterministic sorting, and conflict and cycle detection.
//
// A Graph maps each root node to the ordered list of its edges. In the
// forward orientation roots are installed packages (*DistPackage) and edges
// are their declared requirements (*ReqPackage); Reverse swaps the two, so
// roots become requirement targets and edges become dependents. Despite the
// "graph of dependencies" name, cycles are expected in real environments and
// every traversal is guarded against them.
//
// Graphs are value-like: Filter, Reverse and Sort never mutate the receiver,
// they return a new Graph.
package graph

import (
	"sort"

	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/inventory"
)

// Graph is an ordered association from root node to edge list, with a
// secondary key index for root lookups. The zero value is not usable; graphs
// come from Build or from a transformation on an existing graph.
type Graph struct {
	keys     []string             // root keys in insertion order
	nodes    map[string]Package   // root key -> root node
	children map[string][]Package // root key -> ordered edge list
	reversed bool
}

func newGraph(reversed bool) *Graph {
	return &Graph{
		nodes:    make(map[string]Package),
		children: make(map[string][]Package),
		reversed: reversed,
	}
}

// addRoot registers a root node. Roots are deduplicated by key: re-adding an
// existing key keeps the original node and edge list.
func (g *Graph) addRoot(node Package) {
	key := node.Key()
	if _, ok := g.nodes[key]; ok {
		return
	}
	g.keys = append(g.keys, key)
	g.nodes[key] = node
	g.children[key] = nil
}

// Build constructs the forward dependency graph from inventory records.
// The root index is built first, then each declared requirement is resolved
// against it. Construction never fails: a requirement whose target is not
// installed becomes a missing edge, not an error.
func Build(records []inventory.Record) *Graph {
	g := newGraph(false)

	index := make(map[string]*DistPackage, len(records))
	for _, rec := range records {
		dist := NewDistPackage(rec.Name, rec.Version)
		if _, ok := index[dist.Key()]; ok {
			continue
		}
		index[dist.Key()] = dist
		g.addRoot(dist)
	}

	resolved := make(map[string]bool, len(records))
	for _, rec := range records {
		key := inventory.NormalizeKey(rec.Name)
		if resolved[key] {
			continue // duplicate record, first wins
		}
		resolved[key] = true
		edges := make([]Package, 0, len(rec.Requires))
		for _, req := range rec.Requires {
			target := index[inventory.NormalizeKey(req.Name)]
			edges = append(edges, NewReqPackage(req.Name, req.Constraint, target))
		}
		g.children[key] = edges
	}

	return g
}

// Len returns the number of roots.
func (g *Graph) Len() int { return len(g.keys) }

// IsReversed reports whether edges point from requirement targets to their
// dependents rather than from packages to their requirements.
func (g *Graph) IsReversed() bool { return g.reversed }

// Roots returns the root nodes in graph order. The slice is freshly
// allocated; the nodes are shared.
func (g *Graph) Roots() []Package {
	roots := make([]Package, len(g.keys))
	for i, k := range g.keys {
		roots[i] = g.nodes[k]
	}
	return roots
}

// NodeByKey looks up a root node by its canonical key.
func (g *Graph) NodeByKey(key string) (Package, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Children returns the edge list of the root with the given key, or nil if
// the key is not a root (a missing dependency is a leaf, not a root).
func (g *Graph) Children(key string) []Package {
	return g.children[key]
}

// Filter returns the subgraph reachable from the roots selected by include
// and exclude, both matched case-folded. With both nil the graph itself is
// returned unchanged. A root seeds the traversal iff it is not excluded and
// either include is nil or lists it; edges to excluded targets are dropped.
// Overlapping include and exclude sets are rejected before any traversal.
func (g *Graph) Filter(include, exclude []string) (*Graph, error) {
	if include == nil && exclude == nil {
		return g, nil
	}

	var inc map[string]bool
	if include != nil {
		inc = foldSet(include)
	}
	exc := foldSet(exclude)

	for k := range inc {
		if exc[k] {
			return nil, errors.New(errors.ErrCodeInvalidFilter,
				"cannot both include and exclude %q", k)
		}
	}

	out := newGraph(g.reversed)
	seen := make(map[string]bool)
	var stack []Package

	for _, key := range g.keys {
		if exc[key] {
			continue
		}
		if inc == nil || inc[key] {
			stack = append(stack, g.nodes[key])
		}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			var edges []Package
			for _, c := range g.children[n.Key()] {
				if !exc[c.Key()] {
					edges = append(edges, c)
				}
			}
			out.addRoot(n)
			out.children[n.Key()] = edges
			seen[n.Key()] = true

			for _, c := range edges {
				if seen[c.Key()] {
					continue
				}
				// No corresponding root means the edge target is a
				// missing dependency; traversal stops there.
				if child, ok := g.nodes[c.Key()]; ok {
					stack = append(stack, child)
				}
			}
		}
	}

	return out, nil
}

// Sort returns a graph whose root order and edge orders are ascending by
// key. Purely cosmetic, used before stable rendering; applying it twice
// yields the same result.
func (g *Graph) Sort() *Graph {
	out := newGraph(g.reversed)

	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	sort.Strings(keys)

	for _, key := range keys {
		out.addRoot(g.nodes[key])
		edges := make([]Package, len(g.children[key]))
		copy(edges, g.children[key])
		sort.Slice(edges, func(i, j int) bool { return edges[i].Key() < edges[j].Key() })
		out.children[key] = edges
	}

	return out
}

// foldSet normalizes filter values so users may pass either display names
// or canonical keys.
func foldSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[inventory.NormalizeKey(v)] = true
	}
	return set
}
