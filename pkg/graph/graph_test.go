package graph

import (
	"sort"
	"testing"

	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/inventory"
)

// testRecords builds a small environment:
//
//	a 1.0 -> b>=1.0, c
//	b 2.0 -> d>=2.0
//	c 3.3 -> (none)
//	d 2.35 -> (none)
//	e 0.1 -> ghost>=1.0   (ghost is not installed)
func testRecords() []inventory.Record {
	return []inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{
			{Name: "b", Constraint: ">=1.0"},
			{Name: "c"},
		}},
		{Name: "b", Version: "2.0", Requires: []inventory.Requirement{
			{Name: "d", Constraint: ">=2.0"},
		}},
		{Name: "c", Version: "3.3"},
		{Name: "d", Version: "2.35"},
		{Name: "e", Version: "0.1", Requires: []inventory.Requirement{
			{Name: "ghost", Constraint: ">=1.0"},
		}},
	}
}

func rootKeys(g *Graph) []string {
	var keys []string
	for _, r := range g.Roots() {
		keys = append(keys, r.Key())
	}
	return keys
}

func childKeys(g *Graph, key string) []string {
	var keys []string
	for _, c := range g.Children(key) {
		keys = append(keys, c.Key())
	}
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild(t *testing.T) {
	g := Build(testRecords())

	if g.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", g.Len())
	}
	if got := rootKeys(g); !equalStrings(got, []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("root keys = %v (insertion order expected)", got)
	}

	if got := childKeys(g, "a"); !equalStrings(got, []string{"b", "c"}) {
		t.Errorf("children of a = %v, want [b c]", got)
	}

	// Requirements resolve against the index.
	b := g.Children("a")[0].(*ReqPackage)
	if b.Dist() == nil || b.Dist().Version() != "2.0" {
		t.Errorf("a's requirement on b did not resolve to installed 2.0")
	}
	if b.IsMissing() {
		t.Error("resolved requirement reported missing")
	}
}

func TestBuildMissingDependency(t *testing.T) {
	g := Build(testRecords())

	// Construction never fails on a missing dependency: it is represented.
	ghost := g.Children("e")[0].(*ReqPackage)
	if !ghost.IsMissing() {
		t.Error("ghost requirement: IsMissing() = false, want true")
	}
	if ghost.InstalledVersion() != UnknownVersion {
		t.Errorf("ghost InstalledVersion() = %q, want %q", ghost.InstalledVersion(), UnknownVersion)
	}
	if _, ok := g.NodeByKey("ghost"); ok {
		t.Error("missing dependency must not appear as a root")
	}
}

func TestBuildNormalizesKeys(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "Typing_Extensions", Version: "4.0"},
	})
	node, ok := g.NodeByKey("typing-extensions")
	if !ok {
		t.Fatal("case-folded key lookup failed")
	}
	if node.Name() != "Typing_Extensions" {
		t.Errorf("display name = %q, original casing expected", node.Name())
	}
}

func TestBuildDuplicateRecords(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{{Name: "b"}}},
		{Name: "A", Version: "9.9"},
		{Name: "b", Version: "2.0"},
	})
	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (duplicate collapsed)", g.Len())
	}
	node, _ := g.NodeByKey("a")
	if node.(*DistPackage).Version() != "1.0" {
		t.Errorf("duplicate record replaced the first occurrence")
	}
	if got := childKeys(g, "a"); !equalStrings(got, []string{"b"}) {
		t.Errorf("children of a = %v, want [b]", got)
	}
}

func TestFilterIdentity(t *testing.T) {
	g := Build(testRecords())
	got, err := g.Filter(nil, nil)
	if err != nil {
		t.Fatalf("Filter(nil, nil) error = %v", err)
	}
	if got != g {
		t.Error("Filter(nil, nil) must return the graph unchanged")
	}
}

func TestFilterInclude(t *testing.T) {
	g := Build(testRecords())
	got, err := g.Filter([]string{"a"}, nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}

	// a seeds the traversal; b, c via edges; d via b. e is unreachable.
	want := []string{"a", "b", "c", "d"}
	keys := rootKeys(got)
	sort.Strings(keys)
	if !equalStrings(keys, want) {
		t.Errorf("filtered roots = %v, want %v", keys, want)
	}
}

func TestFilterExclude(t *testing.T) {
	g := Build(testRecords())
	got, err := g.Filter(nil, []string{"b"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}

	if _, ok := got.NodeByKey("b"); ok {
		t.Error("excluded key b present as root")
	}
	for _, key := range rootKeys(got) {
		for _, c := range got.Children(key) {
			if c.Key() == "b" {
				t.Errorf("excluded key b present as edge target of %s", key)
			}
		}
	}
	// a stays, but with b's edge dropped.
	if gotKeys := childKeys(got, "a"); !equalStrings(gotKeys, []string{"c"}) {
		t.Errorf("children of a = %v, want [c]", gotKeys)
	}
}

func TestFilterOverlapRejected(t *testing.T) {
	g := Build(testRecords())
	_, err := g.Filter([]string{"a", "B"}, []string{"b"})
	if err == nil {
		t.Fatal("Filter() with overlapping sets: error = nil, want error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFilter) {
		t.Errorf("error code = %v, want INVALID_FILTER", errors.GetCode(err))
	}
}

func TestFilterCyclicTerminates(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{{Name: "b"}}},
		{Name: "b", Version: "2.0", Requires: []inventory.Requirement{{Name: "a"}}},
	})
	got, err := g.Filter([]string{"a"}, nil)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("filtered Len() = %d, want 2", got.Len())
	}
}

func TestReverse(t *testing.T) {
	g := Build(testRecords())
	r := g.Reverse()

	if !r.IsReversed() {
		t.Fatal("IsReversed() = false after Reverse()")
	}

	// b's dependents are a.
	deps := childKeys(r, "b")
	if !equalStrings(deps, []string{"a"}) {
		t.Errorf("dependents of b = %v, want [a]", deps)
	}

	// The dependent carries the constraint that pulled it in.
	dependent := r.Children("b")[0].(*DistPackage)
	if dependent.Requirement() == nil {
		t.Fatal("reversed dependent has no originating requirement")
	}
	if got := dependent.Requirement().VersionSpec(); got != ">=1.0" {
		t.Errorf("originating requirement spec = %q, want %q", got, ">=1.0")
	}

	// Leaf promotion: nothing depends on a or e, but they must remain.
	for _, key := range []string{"a", "e"} {
		if _, ok := r.NodeByKey(key); !ok {
			t.Errorf("root %s disappeared during reversal", key)
		}
		if n := len(r.Children(key)); n != 0 {
			t.Errorf("promoted leaf %s has %d dependents, want 0", key, n)
		}
	}

	// The missing target appears as a reversed root too.
	if _, ok := r.NodeByKey("ghost"); !ok {
		t.Error("missing requirement target absent from reversed roots")
	}
}

func TestReverseDeduplicatesRoots(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{{Name: "shared", Constraint: ">=1.0"}}},
		{Name: "b", Version: "2.0", Requires: []inventory.Requirement{{Name: "shared", Constraint: ">=2.0"}}},
		{Name: "shared", Version: "2.5"},
	})
	r := g.Reverse()

	count := 0
	for _, key := range rootKeys(r) {
		if key == "shared" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("shared appears as %d reversed roots, want 1", count)
	}
	deps := childKeys(r, "shared")
	sort.Strings(deps)
	if !equalStrings(deps, []string{"a", "b"}) {
		t.Errorf("dependents of shared = %v, want [a b]", deps)
	}
}

func TestReverseRoundTrip(t *testing.T) {
	g := Build(testRecords())
	rt := g.Reverse().Reverse()

	if rt.IsReversed() {
		t.Fatal("double reversal still reversed")
	}

	want := rootKeys(g)
	got := rootKeys(rt)
	sort.Strings(want)
	sort.Strings(got)
	if !equalStrings(got, want) {
		t.Fatalf("round-trip root keys = %v, want %v", got, want)
	}

	for _, key := range rootKeys(g) {
		wantEdges := childKeys(g, key)
		gotEdges := childKeys(rt, key)
		sort.Strings(wantEdges)
		sort.Strings(gotEdges)
		if !equalStrings(gotEdges, wantEdges) {
			t.Errorf("round-trip edges of %s = %v, want %v", key, gotEdges, wantEdges)
		}
	}
}

func TestSort(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "zeta", Version: "1.0", Requires: []inventory.Requirement{
			{Name: "beta"}, {Name: "alpha"},
		}},
		{Name: "beta", Version: "1.0"},
		{Name: "alpha", Version: "1.0"},
	})

	s := g.Sort()
	if got := rootKeys(s); !equalStrings(got, []string{"alpha", "beta", "zeta"}) {
		t.Errorf("sorted roots = %v", got)
	}
	if got := childKeys(s, "zeta"); !equalStrings(got, []string{"alpha", "beta"}) {
		t.Errorf("sorted edges of zeta = %v", got)
	}

	// Idempotent.
	s2 := s.Sort()
	if !equalStrings(rootKeys(s2), rootKeys(s)) {
		t.Error("Sort() not idempotent on root order")
	}

	// Original untouched.
	if got := rootKeys(g); !equalStrings(got, []string{"zeta", "beta", "alpha"}) {
		t.Errorf("Sort() mutated its receiver: roots = %v", got)
	}
}

func TestConflicts(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{
			{Name: "b", Constraint: ">=2.0"}, // installed 1.0: conflict
			{Name: "c"},                      // empty constraint: never conflicts
		}},
		{Name: "b", Version: "1.0"},
		{Name: "c", Version: "0.1"},
		{Name: "e", Version: "0.1", Requires: []inventory.Requirement{
			{Name: "ghost"}, // missing: always conflicts
		}},
	})

	conflicts := Conflicts(g)
	if len(conflicts) != 2 {
		t.Fatalf("Conflicts() returned %d groups, want 2", len(conflicts))
	}

	if conflicts[0].Package.Key() != "a" {
		t.Errorf("conflicts[0].Package = %s, want a", conflicts[0].Package.Key())
	}
	if len(conflicts[0].Requirements) != 1 || conflicts[0].Requirements[0].Key() != "b" {
		t.Errorf("conflicts[0].Requirements = %v", conflicts[0].Requirements)
	}

	if conflicts[1].Package.Key() != "e" {
		t.Errorf("conflicts[1].Package = %s, want e", conflicts[1].Package.Key())
	}
	if !conflicts[1].Requirements[0].IsMissing() {
		t.Error("missing requirement not flagged")
	}
}

func TestConflictsCleanGraph(t *testing.T) {
	g := Build(testRecords()[:4]) // drop e: everything satisfied
	if got := Conflicts(g); len(got) != 0 {
		t.Errorf("Conflicts() = %v, want none", got)
	}
}

func TestCyclesTwoHop(t *testing.T) {
	g := Build([]inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{{Name: "b", Constraint: ">=1.0"}}},
		{Name: "b", Version: "2.0", Requires: []inventory.Requirement{{Name: "a", Constraint: "<2.0"}}},
	})

	cycles := Cycles(g)
	if len(cycles) != 1 {
		t.Fatalf("Cycles() returned %d entries, want exactly 1", len(cycles))
	}
	c := cycles[0]
	if c.Dependent.Key() != "a" || c.Dependency.Key() != "b" {
		t.Errorf("cycle = (%s, %s), want (a, b)", c.Dependent.Key(), c.Dependency.Key())
	}
	if c.CounterRequirement.Key() != "a" {
		t.Errorf("counter requirement key = %s, want a", c.CounterRequirement.Key())
	}
	if got := c.CounterRequirement.VersionSpec(); got != "<2.0" {
		t.Errorf("counter requirement spec = %q, want %q (the edge on b's list)", got, "<2.0")
	}
}

func TestCyclesThreeHopNotDetected(t *testing.T) {
	// Known limitation: only direct two-hop cycles are reported.
	g := Build([]inventory.Record{
		{Name: "a", Version: "1.0", Requires: []inventory.Requirement{{Name: "b"}}},
		{Name: "b", Version: "1.0", Requires: []inventory.Requirement{{Name: "c"}}},
		{Name: "c", Version: "1.0", Requires: []inventory.Requirement{{Name: "a"}}},
	})
	if got := Cycles(g); len(got) != 0 {
		t.Errorf("Cycles() on a three-hop cycle = %d entries, want 0", len(got))
	}
}

func TestCyclesNone(t *testing.T) {
	g := Build(testRecords())
	if got := Cycles(g); len(got) != 0 {
		t.Errorf("Cycles() = %d entries, want 0", len(got))
	}
}
