package graph

// Conflict pairs an installed package with the requirements it declares that
// are not satisfied by the environment: missing targets, or installed
// versions outside the declared constraint.
type Conflict struct {
	Package      *DistPackage
	Requirements []*ReqPackage
}

// Conflicts scans every requirement edge and reports the unsatisfied ones,
// grouped by the declaring package in graph order. Packages with no
// conflicting requirements are omitted. Run this on the freshly built
// forward graph, before any filtering or reversal.
func Conflicts(g *Graph) []Conflict {
	var conflicts []Conflict
	for _, key := range g.keys {
		dist, ok := g.nodes[key].(*DistPackage)
		if !ok {
			continue
		}
		var bad []*ReqPackage
		for _, c := range g.children[key] {
			if req, ok := c.(*ReqPackage); ok && req.IsConflicting() {
				bad = append(bad, req)
			}
		}
		if len(bad) > 0 {
			conflicts = append(conflicts, Conflict{Package: dist, Requirements: bad})
		}
	}
	return conflicts
}
