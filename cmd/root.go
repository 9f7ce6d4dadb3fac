// Package cmd implements the dumpx command line: it loads a document,
// optionally narrows it with a CEL expression and prints it as nested
// tables.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/dumpx/internal/formatter"
	"github.com/oakwood-commons/dumpx/internal/limiter"
	"github.com/oakwood-commons/dumpx/pkg/config"
	"github.com/oakwood-commons/dumpx/pkg/core"
	"github.com/oakwood-commons/dumpx/pkg/layout"
	"github.com/oakwood-commons/dumpx/pkg/loader"
	"github.com/oakwood-commons/dumpx/pkg/logger"
	"github.com/oakwood-commons/dumpx/pkg/settings"
)

// errShowHelp is returned when there is no input and help should be shown.
var errShowHelp = errors.New("no input provided")

var (
	stdinIsPiped     = func() bool { stat, err := os.Stdin.Stat(); return err == nil && (stat.Mode()&os.ModeCharDevice) == 0 }
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } //nolint:gosec // file descriptors fit in int
	terminalWidth    = formatter.TerminalWidth
)

// rootOptions are the flag values of the root command.
type rootOptions struct {
	layout        string
	maxCount      int
	truncateMode  string
	perDimension  bool
	maxDepth      int
	rowIndices    bool
	memberTypes   bool
	rowSeparators bool
	headers       bool
	border        string
	noColor       bool
	width         int
	maxString     int
	configFile    string
	expression    string
	format        string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Print JSON, YAML and TOML documents as nested tables",
		Long: `dumpx reads a document from a file or standard input and prints it as
nested tables. Objects become name/value tables (vertical layout) or one row
with a column per key (horizontal layout); lists become one row per item.

Layout rules, truncation and rendering defaults come from the built-in
configuration, then $XDG_CONFIG_HOME/dumpx/config.yaml or --config-file,
then flags.`,
		Example: "\n  dumpx testdata/people.json\n  dumpx --layout horizontal --max-count 5 testdata/people.json\n  cat config.toml | dumpx -e '_.server'\n  kubectl get pods -o json | dumpx -e '_.items.map(p, p.metadata)'\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logger.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			lgr := logger.WithValues(logger.Get(level), logger.CommandKey, cmd.Name())
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logger.WithLogger(ctx, lgr))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRoot(cmd, opts, args)
			if errors.Is(err, errShowHelp) {
				return cmd.Help()
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.layout, "layout", "l", "", "default layout: vertical|horizontal")
	f.IntVarP(&opts.maxCount, "max-count", "n", 0, "maximum number of items shown per collection")
	f.StringVar(&opts.truncateMode, "truncate-mode", "", "which items to keep: head|tail|head_and_tail")
	f.BoolVar(&opts.perDimension, "per-dimension", false, "truncate both axes of two-dimensional arrays")
	f.IntVar(&opts.maxDepth, "max-depth", config.DefaultMaxDepth, "deepest nesting level rendered as a table")
	f.BoolVar(&opts.rowIndices, "row-indices", false, "show the row index column")
	f.BoolVar(&opts.memberTypes, "member-types", false, "show member types")
	f.BoolVar(&opts.rowSeparators, "row-separators", false, "draw a line between rows")
	f.BoolVar(&opts.headers, "headers", true, "show table headers")
	f.StringVar(&opts.border, "border", "", "border style: rounded|normal|thick|double|ascii|hidden|none")
	f.BoolVar(&opts.noColor, "no-color", false, "disable color output")
	f.IntVar(&opts.width, "width", 0, "maximum output width in columns (default: terminal width)")
	f.IntVar(&opts.maxString, "max-string", 0, "truncate cell text longer than this many columns (0 = no limit)")
	f.StringVarP(&opts.expression, "expression", "e", "", "CEL expression using '_' as root, for example '_.items[0]'")
	f.StringVarP(&opts.format, "format", "f", "", "input format: auto|json|ndjson|yaml|toml (default: from extension or content)")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/dumpx/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug|info|warn|error, or a verbosity number")

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	run, err := opts.settings(args)
	if err != nil {
		return err
	}
	ctx := settings.IntoContext(cmd.Context(), run)
	lgr := logger.FromContext(ctx)

	overrides, err := opts.config(cmd.Flags(), run)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(resolveConfigPath(run.ConfigFile), overrides)
	if err != nil {
		return err
	}
	// The terminal width applies only when neither the file nor --width set one.
	if cfg.Render.Width == nil {
		if w := terminalWidth(); w > 0 {
			cfg.Render.Width = &w
		}
	}
	engine, err := core.New(core.WithConfig(cfg), core.WithLogger(*lgr))
	if err != nil {
		return err
	}

	root, err := loadInput(ctx, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if run.Expression != "" {
		root, err = engine.Evaluate(run.Expression, root)
		if err != nil {
			return fmt.Errorf("evaluate %q: %w", run.Expression, err)
		}
	}
	return engine.Write(ctx, cmd.OutOrStdout(), root)
}

// settings validates the input flags and collects them for this run.
func (o *rootOptions) settings(args []string) (*settings.Run, error) {
	format, err := loader.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	run := settings.NewCliParams()
	run.Input = settings.Input{Format: string(format)}
	if len(args) > 0 {
		run.Input.Path = args[0]
	}
	run.ConfigFile = o.configFile
	run.Expression = o.expression
	run.NoColor = o.noColor || os.Getenv("NO_COLOR") != "" || !stdoutIsTerminal()
	return run, nil
}

// config turns the flags that were set into a configuration overlay.
func (o *rootOptions) config(flags *pflag.FlagSet, run *settings.Run) (*config.Config, error) {
	cfg := config.New()

	if flags.Changed("layout") {
		l, err := layout.ParseLayout(o.layout)
		if err != nil {
			return nil, err
		}
		cfg.Table.Layout = l
	}
	if flags.Changed("row-indices") {
		cfg.Table.ShowRowIndices = layout.Bool(o.rowIndices)
	}
	if flags.Changed("member-types") {
		cfg.Table.ShowMemberTypes = layout.Bool(o.memberTypes)
	}
	if flags.Changed("row-separators") {
		cfg.Table.ShowRowSeparators = layout.Bool(o.rowSeparators)
	}
	if flags.Changed("headers") {
		cfg.Table.ShowTableHeaders = layout.Bool(o.headers)
	}

	if flags.Changed("max-count") {
		if o.maxCount < 0 {
			return nil, fmt.Errorf("--max-count must not be negative, got %d", o.maxCount)
		}
		cfg.Truncation.MaxCount = limiter.Max(o.maxCount)
	}
	if flags.Changed("truncate-mode") {
		mode, err := limiter.ParseMode(o.truncateMode)
		if err != nil {
			return nil, err
		}
		cfg.Truncation.Mode = mode
	}
	if flags.Changed("per-dimension") {
		cfg.Truncation.PerDimension = limiter.Enabled(o.perDimension)
	}

	if flags.Changed("max-depth") {
		if o.maxDepth < 0 {
			return nil, fmt.Errorf("--max-depth must not be negative, got %d", o.maxDepth)
		}
		depth := o.maxDepth
		cfg.MaxDepth = &depth
	}

	if flags.Changed("border") {
		border, err := formatter.ParseBorder(o.border)
		if err != nil {
			return nil, err
		}
		cfg.Render.Border = border
	}
	// An uncolored terminal or NO_COLOR wins; otherwise the file decides.
	if run.NoColor {
		cfg.Render.NoColor = layout.Bool(true)
	}
	if flags.Changed("max-string") {
		if o.maxString < 0 {
			return nil, fmt.Errorf("--max-string must not be negative, got %d", o.maxString)
		}
		maxString := o.maxString
		cfg.Render.MaxStringLength = &maxString
	}
	if flags.Changed("width") {
		width := o.width
		cfg.Render.Width = &width
	}
	return cfg, nil
}

// loadInput reads the document named by the run settings, or standard
// input when no file was given.
func loadInput(ctx context.Context, stdin io.Reader) (any, error) {
	run := settings.RunOrDefault(ctx)
	format := loader.Format(run.Input.Format)

	if run.Input.FromStdin() {
		if stdin == os.Stdin && !stdinIsPiped() {
			return nil, errShowHelp
		}
		return loader.LoadReader(stdin, format)
	}

	if format == loader.FormatAuto {
		return loader.LoadFileWithLogger(run.Input.Path, *logger.FromContext(ctx))
	}
	data, err := os.ReadFile(run.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", run.Input.Path, err)
	}
	root, err := loader.LoadRoot(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", run.Input.Path, err)
	}
	return root, nil
}
