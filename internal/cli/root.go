package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgtree/pkg/buildinfo"
	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/graph"
	"github.com/matzehuels/pkgtree/pkg/inventory"
	"github.com/matzehuels/pkgtree/pkg/render"
)

// Warning modes accepted by --warn.
const (
	warnSilence  = "silence"
	warnSuppress = "suppress"
	warnFail     = "fail"
)

// ErrWarningsFound is returned in "fail" warn mode when conflicts or cycles
// were reported. The diagnostics are already on stderr by then, so main maps
// this to exit code 1 without printing anything further.
var ErrWarningsFound = stderrors.New("conflicting or cyclic dependencies found")

// options holds the command-line flags of the root command.
type options struct {
	freeze       bool     // bare name==version output
	all          bool     // list every package at the top level
	localOnly    bool     // restrict scanning to the active virtualenv
	userOnly     bool     // restrict scanning to the user site directory
	reverse      bool     // show dependents instead of dependencies
	warn         string   // silence, suppress or fail
	packages     string   // comma-separated include filter
	exclude      string   // comma-separated exclude filter
	jsonFlat     bool     // flat JSON output
	jsonTree     bool     // nested JSON output
	outputFormat string   // graphviz output format
	sitePackages []string // explicit site-packages directories
	fromJSON     string   // read inventory from a JSON file
	indent       int      // JSON indent width
}

// Execute runs the pkgtree CLI and returns an error if the command fails.
// This is the main entry point for the CLI application.
func Execute(ctx context.Context) error {
	var verbose bool
	opts := options{warn: warnSuppress, indent: 4}

	root := &cobra.Command{
		Use:   "pkgtree",
		Short: "pkgtree shows the dependency tree of installed Python packages",
		Long: `pkgtree inspects the installed Python distributions, builds their
dependency graph, and renders it as an indented tree, JSON, or a Graphviz
graph. Version conflicts and dependency cycles are reported on stderr.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd, &opts); err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.Flags().BoolVarP(&opts.freeze, "freeze", "f", false, "print names so as to write freeze files")
	root.Flags().BoolVarP(&opts.all, "all", "a", false, "list all packages at the top level")
	root.Flags().BoolVarP(&opts.localOnly, "local-only", "l", false, "only show packages in the active virtualenv")
	root.Flags().BoolVarP(&opts.userOnly, "user-only", "u", false, "only show installations in the user site dir")
	root.Flags().BoolVarP(&opts.reverse, "reverse", "r", false, "show the tree in reverse: dependents under their dependencies")
	root.Flags().StringVarP(&opts.warn, "warn", "w", opts.warn, `warning control: "suppress" shows warnings and exits 0, "silence" hides them, "fail" exits 1 when any are found`)
	root.Flags().StringVarP(&opts.packages, "packages", "p", "", "comma-separated list of packages to show")
	root.Flags().StringVarP(&opts.exclude, "exclude", "e", "", "comma-separated list of packages to exclude")
	root.Flags().BoolVarP(&opts.jsonFlat, "json", "j", false, "output the tree as flat JSON")
	root.Flags().BoolVar(&opts.jsonTree, "json-tree", false, "output the tree as nested JSON")
	root.Flags().StringVar(&opts.outputFormat, "graph-output", "", fmt.Sprintf("output a dependency graph in the given format (%s)", strings.Join(render.SupportedFormats, ", ")))
	root.Flags().StringArrayVar(&opts.sitePackages, "site-packages", nil, "site-packages directory to scan (repeatable)")
	root.Flags().StringVar(&opts.fromJSON, "from-json", "", "read the package inventory from a JSON file instead of scanning")
	root.Flags().IntVar(&opts.indent, "indent", opts.indent, "JSON indent width")

	return root.ExecuteContext(ctx)
}

// applyConfig fills in defaults from the user config file for flags the user
// did not set explicitly.
func applyConfig(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(defaultConfigPath())
	if err != nil {
		return err
	}
	if cfg.Warn != "" && !cmd.Flags().Changed("warn") {
		opts.warn = cfg.Warn
	}
	if cfg.Indent > 0 && !cmd.Flags().Changed("indent") {
		opts.indent = cfg.Indent
	}
	if len(cfg.SitePackages) > 0 && !cmd.Flags().Changed("site-packages") {
		opts.sitePackages = cfg.SitePackages
	}
	return nil
}

// run executes the pipeline: collect inventory, build the graph, report
// diagnostics, then reverse, filter and render. Diagnostics always run on
// the unreversed, unfiltered graph.
func run(ctx context.Context, stdout, stderr io.Writer, opts options) error {
	logger := loggerFromContext(ctx)

	switch opts.warn {
	case warnSilence, warnSuppress, warnFail:
	default:
		return errors.New(errors.ErrCodeInvalidWarnMode,
			"invalid warn mode %q; valid modes are: %s, %s, %s",
			opts.warn, warnSilence, warnSuppress, warnFail)
	}
	if opts.outputFormat != "" {
		if err := render.ValidateFormat(opts.outputFormat); err != nil {
			return err
		}
	}

	prog := newProgress(logger)
	records, err := newSource(opts).Packages(ctx)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Collected %d distributions", len(records)))

	g := graph.Build(records)

	// json and graphviz output is raw machine output: diagnostics are only
	// shown (and only counted) for the text renderer.
	isText := !opts.jsonFlat && !opts.jsonTree && opts.outputFormat == ""

	warningsFound := false
	if isText && opts.warn != warnSilence {
		conflicts := graph.Conflicts(g)
		if len(conflicts) > 0 {
			renderConflicts(stderr, conflicts)
			renderSeparator(stderr)
		}
		cycles := graph.Cycles(g)
		if len(cycles) > 0 {
			renderCycles(stderr, cycles)
			renderSeparator(stderr)
		}
		warningsFound = len(conflicts) > 0 || len(cycles) > 0
	}

	// Reverse before filtering so the filter applies to the reversed view.
	if opts.reverse {
		g = g.Reverse()
	}
	g, err = g.Filter(splitList(opts.packages), splitList(opts.exclude))
	if err != nil {
		return err
	}

	switch {
	case opts.jsonFlat:
		out, err := render.JSON(g, opts.indent)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out)
	case opts.jsonTree:
		out, err := render.JSONTree(g, opts.indent)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, out)
	case opts.outputFormat != "":
		out, err := render.Graphviz(ctx, g, opts.outputFormat)
		if err != nil {
			return err
		}
		if _, err := stdout.Write(out); err != nil {
			return err
		}
	default:
		if err := render.Text(stdout, g, opts.all, opts.freeze); err != nil {
			return err
		}
	}

	if warningsFound && opts.warn == warnFail {
		return ErrWarningsFound
	}
	return nil
}

// newSource picks the inventory source for the given options.
func newSource(opts options) inventory.Source {
	if opts.fromJSON != "" {
		return &inventory.JSONFile{Path: opts.fromJSON}
	}
	return &inventory.DistInfo{
		Paths:     opts.sitePackages,
		LocalOnly: opts.localOnly,
		UserOnly:  opts.userOnly,
	}
}

// splitList turns a comma-separated flag value into a slice, or nil when the
// flag was not given. The nil/empty distinction matters: a nil filter set
// means "no filtering", not "match nothing".
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
