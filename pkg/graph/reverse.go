package graph

// Reverse turns "depends on" into "is depended on by". On a forward graph
// every requirement target becomes a root whose edges are the packages that
// require it, each annotated (via AsParentOf) with the constraint that pulled
// it in; packages nobody depends on are promoted to empty-edged roots so they
// do not disappear. On a reversed graph Reverse reconstructs the forward
// orientation, so reversing twice yields a graph with the same root keys and
// edge memberships as the original, modulo back-link metadata.
//
// Reversal works purely on the nodes present in the receiver: reversing a
// filtered graph only considers the filtered nodes and their edges.
func (g *Graph) Reverse() *Graph {
	if g.reversed {
		return g.reverseToForward()
	}

	out := newGraph(true)
	branch := g.branchKeys()

	for _, key := range g.keys {
		dist := g.nodes[key].(*DistPackage)
		for _, c := range g.children[key] {
			req := c.(*ReqPackage)
			// Dependents of the same target collapse onto one root:
			// reuse the existing root node when the key is known.
			if _, ok := out.nodes[req.Key()]; !ok {
				out.addRoot(req)
			}
			out.children[req.Key()] = append(out.children[req.Key()], dist.AsParentOf(req))
		}
		if !branch[key] {
			out.addRoot(dist.AsRequirement())
		}
	}

	return out
}

func (g *Graph) reverseToForward() *Graph {
	out := newGraph(false)
	branch := g.branchKeys()

	for _, key := range g.keys {
		req := g.nodes[key].(*ReqPackage)
		for _, c := range g.children[key] {
			dist := c.(*DistPackage)
			if _, ok := out.nodes[dist.Key()]; !ok {
				// Clear the synthetic back-link; forward roots carry none.
				out.addRoot(dist.AsParentOf(nil))
			}
			out.children[dist.Key()] = append(out.children[dist.Key()], req)
		}
		if !branch[key] && req.Dist() != nil {
			// A requirement target nobody lists as a dependent becomes a
			// plain installed root again. Missing targets have no
			// distribution to promote and stay edges only.
			out.addRoot(req.Dist())
		}
	}

	return out
}

// branchKeys returns the set of keys appearing as an edge target anywhere in
// the graph.
func (g *Graph) branchKeys() map[string]bool {
	set := make(map[string]bool)
	for _, key := range g.keys {
		for _, c := range g.children[key] {
			set[c.Key()] = true
		}
	}
	return set
}
