// Package inventory enumerates installed Python distributions and their
// declared requirements. It is the inbound boundary of pkgtree: sources
// produce flat Record values, and the graph engine never touches the
// filesystem itself.
//
// Two sources are provided: [DistInfo] scans site-packages directories for
// *.dist-info metadata, and [JSONFile] reads the same records from a JSON
// document, which is useful for pipelines and tests.
package inventory

import (
	"context"
	"strings"
)

// Requirement is a single declared dependency of an installed distribution:
// a target package name plus an optional version constraint such as ">=1.0".
type Requirement struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}

// Record describes one installed distribution. Key is the canonical
// identifier derived from Name; sources may leave it empty and let
// NormalizeKey fill it in.
type Record struct {
	Key      string        `json:"key,omitempty"`
	Name     string        `json:"name"`
	Version  string        `json:"version"`
	Requires []Requirement `json:"requires,omitempty"`
}

// Source produces the full set of installed distributions. Collection runs
// exactly once, before any graph operation; sources must be read-only.
type Source interface {
	Packages(ctx context.Context) ([]Record, error)
}

// NormalizeKey converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
