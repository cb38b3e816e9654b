// Package render implements the presentation views over a dependency graph:
// an indented text tree, a flat JSON edge list, a nested JSON tree, and a
// Graphviz node/edge description.
//
// The tree-shaped renderers guard against cyclic graphs with a chain check:
// a node already present among the display names between the current root
// and the current position is not descended into again. The guard only
// prevents non-termination; reporting cycles is the job of graph.Cycles.
package render

import (
	"io"
	"strings"

	"github.com/matzehuels/pkgtree/pkg/graph"
)

// Text writes the dependency tree as indented text, two spaces per level.
// Root lines are unprefixed; child lines carry a "- " bullet unless frozen.
// With listAll false, only packages that are nobody's dependency appear at
// the top level. Frozen output is bare "name==version" lines suitable for a
// requirements manifest.
func Text(w io.Writer, g *graph.Graph, listAll, frozen bool) error {
	g = g.Sort()
	branch := branchKeys(g)
	useBullets := !frozen

	var lines []string
	var walk func(node graph.Package, parent graph.Package, indent int, chain []string)
	walk = func(node graph.Package, parent graph.Package, indent int, chain []string) {
		line := node.RenderAsRoot(frozen)
		if parent != nil {
			line = node.RenderAsBranch(frozen)
			prefix := strings.Repeat(" ", indent)
			if useBullets {
				prefix += "- "
			}
			line = prefix + line
		}
		lines = append(lines, line)
		for _, c := range g.Children(node.Key()) {
			if containsName(chain, c.Name()) {
				continue
			}
			next := make([]string, len(chain), len(chain)+1)
			copy(next, chain)
			walk(c, node, indent+2, append(next, c.Name()))
		}
	}

	for _, root := range g.Roots() {
		if !listAll && branch[root.Key()] {
			continue
		}
		walk(root, nil, 0, nil)
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// branchKeys collects every key appearing as an edge target.
func branchKeys(g *graph.Graph) map[string]bool {
	set := make(map[string]bool)
	for _, root := range g.Roots() {
		for _, c := range g.Children(root.Key()) {
			set[c.Key()] = true
		}
	}
	return set
}

func containsName(chain []string, name string) bool {
	for _, n := range chain {
		if n == name {
			return true
		}
	}
	return false
}

// nodeVersions returns the installed version and the declared constraint of
// a node, regardless of its concrete kind. Installed packages have no
// constraint of their own unless they carry an originating requirement.
func nodeVersions(p graph.Package) (installed, spec string) {
	switch n := p.(type) {
	case *graph.DistPackage:
		return n.Version(), ""
	case *graph.ReqPackage:
		return n.InstalledVersion(), n.VersionSpec()
	default:
		return "", ""
	}
}
