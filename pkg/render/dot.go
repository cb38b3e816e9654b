package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/graph"
)

// SupportedFormats are the accepted --graph-output format names.
var SupportedFormats = []string{"dot", "jpg", "png", "svg"}

var graphvizFormats = map[string]graphviz.Format{
	"jpg": graphviz.JPG,
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
}

// ValidateFormat checks a graph output format name against SupportedFormats.
func ValidateFormat(format string) error {
	for _, f := range SupportedFormats {
		if format == f {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat,
		"%s is not a supported output format; supported formats are: %s",
		format, strings.Join(SupportedFormats, ", "))
}

// Graphviz renders the graph in the requested format. For "dot" the DOT
// source is returned directly; other formats are rendered through the
// embedded Graphviz backend. The graph is emitted as a flat node/edge list,
// one node per package and one edge per dependency relation; missing targets
// are styled dashed.
func Graphviz(ctx context.Context, g *graph.Graph, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	dot := toDOT(g)
	if format == "dot" {
		return []byte(dot), nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderBackend, err,
			"graphviz backend unavailable; it is required for --graph-output formats other than dot")
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderBackend, err, "parse DOT")
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphvizFormats[format], &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderBackend, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// toDOT builds the DOT description. It iterates the root/edge map once and
// never recurses, so cyclic graphs need no chain guard here.
func toDOT(g *graph.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")

	if !g.IsReversed() {
		for _, root := range g.Roots() {
			pkg := root.(*graph.DistPackage)
			fmt.Fprintf(&buf, "  %q [label=%q];\n", pkg.Key(), pkg.Name()+"\n"+pkg.Version())
			for _, c := range g.Children(pkg.Key()) {
				dep := c.(*graph.ReqPackage)
				if dep.IsMissing() {
					fmt.Fprintf(&buf, "  %q [label=%q, style=dashed];\n", dep.Key(), dep.Name()+"\n(missing)")
					fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", pkg.Key(), dep.Key())
				} else {
					fmt.Fprintf(&buf, "  %q -> %q;\n", pkg.Key(), dep.Key())
				}
			}
		}
	} else {
		for _, root := range g.Roots() {
			dep := root.(*graph.ReqPackage)
			fmt.Fprintf(&buf, "  %q [label=%q];\n", dep.Key(), dep.Name()+"\n"+dep.InstalledVersion())
			for _, c := range g.Children(dep.Key()) {
				fmt.Fprintf(&buf, "  %q -> %q;\n", dep.Key(), c.Key())
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
