package graph

import (
	"fmt"

	"github.com/matzehuels/pkgtree/pkg/inventory"
	"github.com/matzehuels/pkgtree/pkg/pep440"
)

// UnknownVersion is the sentinel installed version for a requirement whose
// target distribution is not installed.
const UnknownVersion = "?"

// Package is the closed set of renderable graph nodes. There are exactly two
// implementations: *DistPackage (an installed distribution) and *ReqPackage
// (a declared requirement). Two nodes are the same node iff their keys match;
// identity never depends on object equality.
type Package interface {
	// Key returns the canonical, case-folded identifier.
	Key() string

	// Name returns the human-facing package name with original casing.
	Name() string

	// RenderAsRoot renders the node as a top-level tree line.
	RenderAsRoot(frozen bool) string

	// RenderAsBranch renders the node as a child line, including the
	// constraint that pulled it in.
	RenderAsBranch(frozen bool) string
}

// DistPackage is an installed distribution: a package that actually exists
// in the inspected environment with a resolved version.
type DistPackage struct {
	key     string
	name    string
	version string

	// req is set only on nodes synthesized while reversing a graph: it is
	// the requirement under which this package appears as a dependent.
	// Display only; never used for lookup or equality.
	req *ReqPackage
}

// NewDistPackage creates an installed-package node. The key is derived from
// the name via inventory.NormalizeKey.
func NewDistPackage(name, version string) *DistPackage {
	return &DistPackage{key: inventory.NormalizeKey(name), name: name, version: version}
}

// Key returns the canonical identifier.
func (d *DistPackage) Key() string { return d.key }

// Name returns the display name.
func (d *DistPackage) Name() string { return d.name }

// Version returns the installed version string.
func (d *DistPackage) Version() string { return d.version }

// Requirement returns the requirement under which this node was reached in a
// reversed graph, or nil on normally constructed nodes.
func (d *DistPackage) Requirement() *ReqPackage { return d.req }

// RenderAsRoot renders "name==version". Freeze mode uses the same form,
// which is what a requirements manifest expects.
func (d *DistPackage) RenderAsRoot(frozen bool) string {
	return fmt.Sprintf("%s==%s", d.name, d.version)
}

// RenderAsBranch renders the package as a dependent in a reversed tree,
// annotated with the constraint that pulled it in.
func (d *DistPackage) RenderAsBranch(frozen bool) string {
	if frozen || d.req == nil {
		return d.RenderAsRoot(frozen)
	}
	return fmt.Sprintf("%s==%s [requires: %s%s]", d.name, d.version, d.req.Name(), d.req.VersionSpec())
}

// AsParentOf returns a copy of this package associated with the requirement
// it satisfies. Reversal uses this to record which constraint produced each
// dependent entry. A nil req clears the association; if both req and the
// current association are nil the receiver itself is returned.
func (d *DistPackage) AsParentOf(req *ReqPackage) *DistPackage {
	if req == nil && d.req == nil {
		return d
	}
	return &DistPackage{key: d.key, name: d.name, version: d.version, req: req}
}

// AsRequirement reinterprets this installed package as a requirement pinned
// to its own version. Reversal promotes leaf packages to roots this way.
func (d *DistPackage) AsRequirement() *ReqPackage {
	return &ReqPackage{
		key:  d.key,
		name: d.name,
		spec: pep440.Parse("==" + d.version),
		dist: d,
	}
}

// ReqPackage is a requirement edge: a dependency declared by an installed
// package, optionally resolved to the installed distribution satisfying it.
type ReqPackage struct {
	key  string
	name string
	spec pep440.Specifier

	// dist is the installed distribution satisfying this requirement,
	// or nil when the target is not installed.
	dist *DistPackage
}

// NewReqPackage creates a requirement node. dist may be nil for a missing
// dependency.
func NewReqPackage(name, constraint string, dist *DistPackage) *ReqPackage {
	return &ReqPackage{
		key:  inventory.NormalizeKey(name),
		name: name,
		spec: pep440.Parse(constraint),
		dist: dist,
	}
}

// Key returns the canonical identifier of the requirement target.
func (r *ReqPackage) Key() string { return r.key }

// Name returns the display name of the requirement target.
func (r *ReqPackage) Name() string { return r.name }

// Dist returns the resolved installed distribution, or nil when missing.
func (r *ReqPackage) Dist() *DistPackage { return r.dist }

// VersionSpec returns the rendered constraint, e.g. ">=1.0,<2.0", or the
// empty string when any version is acceptable.
func (r *ReqPackage) VersionSpec() string { return r.spec.String() }

// InstalledVersion returns the resolved target's version, or UnknownVersion
// when the target is not installed.
func (r *ReqPackage) InstalledVersion() string {
	if r.dist == nil {
		return UnknownVersion
	}
	return r.dist.Version()
}

// IsMissing reports whether the requirement has no installed target.
func (r *ReqPackage) IsMissing() bool {
	return r.InstalledVersion() == UnknownVersion
}

// IsConflicting reports whether the installed version fails the constraint.
// A missing target always conflicts; an empty constraint never does.
func (r *ReqPackage) IsConflicting() bool {
	if r.IsMissing() {
		return true
	}
	if r.spec.IsEmpty() {
		return false
	}
	return !r.spec.Satisfied(r.InstalledVersion())
}

// RenderAsRoot renders "name==installed". In freeze mode a missing target
// renders as the bare name, since there is no version to pin.
func (r *ReqPackage) RenderAsRoot(frozen bool) string {
	if frozen {
		if r.dist != nil {
			return r.dist.RenderAsRoot(true)
		}
		return r.name
	}
	return fmt.Sprintf("%s==%s", r.name, r.InstalledVersion())
}

// RenderAsBranch renders the requirement with the version actually installed
// and the constraint that declared it, e.g. "B==2.0 [requires: B>=1.0]".
func (r *ReqPackage) RenderAsBranch(frozen bool) string {
	if frozen {
		return r.RenderAsRoot(true)
	}
	return fmt.Sprintf("%s==%s [requires: %s%s]", r.name, r.InstalledVersion(), r.name, r.VersionSpec())
}
