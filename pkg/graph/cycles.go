package graph

// Cycle is a direct two-package dependency cycle: Dependent requires
// Dependency, and Dependency's own requirements include Dependent again.
// CounterRequirement is the exact edge on the dependency's list that points
// back, so reports can show the constraint closing the loop.
type Cycle struct {
	Dependent          *DistPackage // A
	Dependency         *ReqPackage  // B, as required by A
	CounterRequirement *ReqPackage  // A, as required by B
}

// Cycles finds direct two-hop cycles (A requires B, B requires A) on a
// forward graph. Each cycle is reported once, from the side encountered
// first in graph order. Longer cycles (A->B->C->A) are intentionally not
// detected; the reporting format and ordering are only defined for the
// two-hop case.
func Cycles(g *Graph) []Cycle {
	index := make(map[string]map[string]bool, len(g.keys))
	for _, key := range g.keys {
		targets := make(map[string]bool)
		for _, c := range g.children[key] {
			targets[c.Key()] = true
		}
		index[key] = targets
	}

	var cycles []Cycle
	seen := make(map[[2]string]bool)
	for _, key := range g.keys {
		dist, ok := g.nodes[key].(*DistPackage)
		if !ok {
			continue
		}
		for _, c := range g.children[key] {
			req, ok := c.(*ReqPackage)
			if !ok {
				continue
			}
			if !index[req.Key()][key] {
				continue
			}
			pair := [2]string{key, req.Key()}
			if pair[0] > pair[1] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			for _, back := range g.children[req.Key()] {
				if counter, ok := back.(*ReqPackage); ok && counter.Key() == key {
					cycles = append(cycles, Cycle{
						Dependent:          dist,
						Dependency:         req,
						CounterRequirement: counter,
					})
					break
				}
			}
		}
	}
	return cycles
}
