package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matzehuels/pkgtree/pkg/graph"
)

// renderConflicts writes the conflict report: packages sorted by key, each
// followed by its conflicting requirements in original edge order.
func renderConflicts(w io.Writer, conflicts []graph.Conflict) {
	sorted := make([]graph.Conflict, len(conflicts))
	copy(sorted, conflicts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Package.Key() < sorted[j].Package.Key()
	})

	fmt.Fprintln(w, styleWarning.Render("Warning!!! Possibly conflicting dependencies found:"))
	for _, c := range sorted {
		fmt.Fprintf(w, "* %s\n", c.Package.RenderAsRoot(false))
		for _, req := range c.Requirements {
			fmt.Fprintf(w, " - %s\n", styleConflict.Render(req.RenderAsBranch(false)))
		}
	}
}

// renderCycles writes the cycle report, sorted by the key of the dependency
// that closes each cycle.
func renderCycles(w io.Writer, cycles []graph.Cycle) {
	sorted := make([]graph.Cycle, len(cycles))
	copy(sorted, cycles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Dependency.Key() < sorted[j].Dependency.Key()
	})

	fmt.Fprintln(w, styleWarning.Render("Warning!! Cyclic dependencies found:"))
	for _, c := range sorted {
		fmt.Fprintf(w, "* %s => %s => %s\n",
			c.Dependent.Name(), c.Dependency.Name(), c.CounterRequirement.Name())
	}
}

// renderSeparator writes the rule that closes a diagnostic section.
func renderSeparator(w io.Writer) {
	fmt.Fprintln(w, styleDim.Render(strings.Repeat("-", 72)))
}
