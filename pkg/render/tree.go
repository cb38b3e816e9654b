package render

import (
	"github.com/matzehuels/pkgtree/pkg/graph"
)

// treeNode is one level of the nested JSON tree. RequiredVersion is the
// constraint under which the parent required this node ("Any" when
// unconstrained); at the top level it is the node's own installed version.
type treeNode struct {
	Key              string     `json:"key"`
	PackageName      string     `json:"package_name"`
	InstalledVersion string     `json:"installed_version"`
	RequiredVersion  string     `json:"required_version"`
	Dependencies     []treeNode `json:"dependencies"`
}

// JSONTree renders the graph as a nested JSON structure mirroring the text
// tree: sorted, rooted at packages that are nobody's dependency, recursion
// stopped by the same ancestor-chain rule as the text renderer.
func JSONTree(g *graph.Graph, indent int) (string, error) {
	g = g.Sort()
	branch := branchKeys(g)

	var build func(node graph.Package, parent graph.Package, chain []string) treeNode
	build = func(node graph.Package, parent graph.Package, chain []string) treeNode {
		installed, spec := nodeVersions(node)

		required := installed
		if parent != nil {
			required = spec
			if required == "" {
				required = "Any"
			}
		}

		out := treeNode{
			Key:              node.Key(),
			PackageName:      node.Name(),
			InstalledVersion: installed,
			RequiredVersion:  required,
			Dependencies:     []treeNode{},
		}
		for _, c := range g.Children(node.Key()) {
			if containsName(chain, c.Name()) {
				continue
			}
			next := make([]string, len(chain), len(chain)+1)
			copy(next, chain)
			out.Dependencies = append(out.Dependencies, build(c, node, append(next, c.Name())))
		}
		return out
	}

	nodes := make([]treeNode, 0, g.Len())
	for _, root := range g.Roots() {
		if branch[root.Key()] {
			continue
		}
		nodes = append(nodes, build(root, nil, []string{root.Name()}))
	}

	return marshalIndentNoEscape(nodes, indent)
}
