package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/matzehuels/pkgtree/pkg/graph"
)

// packageFields is the serialized shape of an installed package.
type packageFields struct {
	Key              string `json:"key"`
	PackageName      string `json:"package_name"`
	InstalledVersion string `json:"installed_version"`
}

// requirementFields is the serialized shape of a requirement edge. A nil
// RequiredVersion means any version is acceptable.
type requirementFields struct {
	Key              string  `json:"key"`
	PackageName      string  `json:"package_name"`
	InstalledVersion string  `json:"installed_version"`
	RequiredVersion  *string `json:"required_version"`
}

// flatEntry pairs a root with its immediate edges; no recursion.
type flatEntry struct {
	Package      any   `json:"package"`
	Dependencies []any `json:"dependencies"`
}

// nodeFields serializes either node kind with its own field shape.
func nodeFields(p graph.Package) any {
	switch n := p.(type) {
	case *graph.DistPackage:
		return packageFields{
			Key:              n.Key(),
			PackageName:      n.Name(),
			InstalledVersion: n.Version(),
		}
	case *graph.ReqPackage:
		f := requirementFields{
			Key:              n.Key(),
			PackageName:      n.Name(),
			InstalledVersion: n.InstalledVersion(),
		}
		if spec := n.VersionSpec(); spec != "" {
			f.RequiredVersion = &spec
		}
		return f
	default:
		return nil
	}
}

// JSON renders the graph as a flat JSON list: one entry per root with the
// root's fields and the fields of its immediate edges. Graph order is
// preserved; callers wanting stable output sort the graph first.
func JSON(g *graph.Graph, indent int) (string, error) {
	entries := make([]flatEntry, 0, g.Len())
	for _, root := range g.Roots() {
		entry := flatEntry{
			Package:      nodeFields(root),
			Dependencies: []any{},
		}
		for _, c := range g.Children(root.Key()) {
			entry.Dependencies = append(entry.Dependencies, nodeFields(c))
		}
		entries = append(entries, entry)
	}

	return marshalIndentNoEscape(entries, indent)
}

// marshalIndentNoEscape marshals v with the given indent width without
// HTML-escaping characters such as '>' in string values.
func marshalIndentNoEscape(v any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encode appends a newline that MarshalIndent would not emit.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
