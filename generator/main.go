// Package generator provides the command that regenerates data-model classes
// from the JSON Schema files of siibra-explorer.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/goaux/contextvalue"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/takumakei/sxplr-gen-go/discover"
	"github.com/takumakei/sxplr-gen-go/logging"
	"github.com/takumakei/sxplr-gen-go/plan"
	"github.com/takumakei/sxplr-gen-go/runner"
	"github.com/takumakei/sxplr-gen-go/watch"
	"go.uber.org/zap"
)

var (
	// ErrSourceRequired is returned when the source project root is missing.
	ErrSourceRequired = errors.New("source project root is required")

	// ErrOutputRequired is returned when the output directory is missing.
	ErrOutputRequired = errors.New("output directory is required")

	errTooManyArgs = errors.New("too many arguments")
)

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// Main runs the command with os.Args and exits with status 1 on failure.
func Main(ctx context.Context, config Config) {
	if code := Execute(ctx, config, os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// Execute runs the command with args and returns the exit status.
func Execute(ctx context.Context, config Config, args []string, stdout, stderr io.Writer) int {
	cmd := NewCommand(config)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx = contextvalue.With(ctx, &config)
	err := cmd.ExecuteContext(ctx)
	logging.Sync()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err.Error())
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprint(stderr, cmd.UsageString())
		}
		return 1
	}
	return 0
}

// NewCommand returns the root command.
func NewCommand(config Config) *cobra.Command {
	flags := new(flagsType)
	cmd := &cobra.Command{
		Use:     config.Use + " <source-project-root> <output-directory>",
		Short:   config.Short,
		Long:    render(config.Long),
		Version: config.Version,
		Args:    positionalArgs,
		RunE:    flags.run,

		ValidArgsFunction: validArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fl := cmd.Flags()
	fl.SortFlags = false
	fl.StringVarP(&flags.Config, "config", "c", "", "Config `file.yaml`")
	fl.StringVarP(&flags.Generator, "generator", "g", "", "Generator `executable` (default from config, datamodel-codegen)")
	fl.StringVarP(&flags.ModelType, "model-type", "m", "", "Output model `type` passed to the generator")
	fl.StringVar(&flags.OutputFile, "output-file", "", "`name` of the file written into each output directory, empty for the directory itself")
	fl.IntVarP(&flags.Jobs, "jobs", "j", 1, "Number of schemas generated concurrently")
	fl.BoolVar(&flags.Validate, "validate", false, "Compile every schema as JSON Schema before generating")
	fl.BoolVarP(&flags.DryRun, "dry-run", "n", false, "Print the plan instead of running the generator")
	fl.StringVar(&flags.PlanFormat, "plan-format", "yaml", "Plan `format` for --dry-run: yaml or json")
	fl.BoolVarP(&flags.Watch, "watch", "w", false, "Regenerate schemas when they change")
	fl.StringVar(&flags.LogLevel, "log-level", "", "Log `level` (default info)")
	fl.StringVar(&flags.LogFormat, "log-format", "", "Log `format`: console or json")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.MarkFlagFilename("config", "yaml", "yml")
	cmd.RegisterFlagCompletionFunc("plan-format", func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{"yaml", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("log-format", func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{"console", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func positionalArgs(_ *cobra.Command, args []string) error {
	switch {
	case len(args) < 1:
		return &usageError{ErrSourceRequired}
	case len(args) < 2:
		return &usageError{ErrOutputRequired}
	case len(args) > 2:
		return &usageError{fmt.Errorf("%w: %q", errTooManyArgs, args[2:])}
	}
	return nil
}

func render(usage string) string {
	if isTTY(os.Stdout) {
		r, err := glamour.NewTermRenderer(
			glamour.WithEnvironmentConfig(),
			glamour.WithWordWrap(100),
		)
		if err == nil { // if NO error
			if s, err := r.Render(usage); err == nil { // if NO error
				return s
			}
		}
	}
	return usage
}

func isTTY(io any) bool {
	if f, ok := io.(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func validArgs(_ *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) < 2 {
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

type flagsType struct {
	Config     string
	Generator  string
	ModelType  string
	OutputFile string
	Jobs       int
	Validate   bool
	DryRun     bool
	PlanFormat string
	Watch      bool
	LogLevel   string
	LogFormat  string
}

// apply overrides opts with the flags given on the command line.
func (f *flagsType) apply(fl *pflag.FlagSet, opts *Options) {
	if fl.Changed("generator") {
		opts.Generator = f.Generator
	}
	if fl.Changed("model-type") {
		opts.ModelType = f.ModelType
	}
	if fl.Changed("output-file") {
		opts.OutputFile = f.OutputFile
	}
	if fl.Changed("jobs") {
		opts.Jobs = f.Jobs
	}
	if fl.Changed("validate") {
		opts.Validate = f.Validate
	}
	if fl.Changed("log-level") {
		opts.Log.Level = f.LogLevel
	}
	if fl.Changed("log-format") {
		opts.Log.Format = f.LogFormat
	}
}

func (f *flagsType) run(cmd *cobra.Command, args []string) error {
	config, ok := contextvalue.From[*Config](cmd.Context())
	if !ok {
		panic("never")
	}

	opts, err := LoadOptions(f.Config, config.defaults())
	if err != nil {
		return err
	}
	f.apply(cmd.Flags(), &opts)
	if err := opts.validate(); err != nil {
		return err
	}
	if err := logging.Init(opts.Log); err != nil {
		return err
	}

	source, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	output, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	p, err := buildPlan(fs, source, output, &opts)
	if err != nil {
		return err
	}
	if f.DryRun {
		return p.Encode(cmd.OutOrStdout(), f.PlanFormat)
	}

	gen := Gen{Name: cmd.Name(), Version: cmd.Version}
	argsOf, err := argsFunc(gen, opts.ModelType, opts.Args)
	if err != nil {
		return err
	}
	r := &runner.Runner{
		Generator: opts.Generator,
		Args:      argsOf,
		Jobs:      opts.Jobs,
		Validate:  opts.Validate,
		Marker:    runner.DefaultMarker,
		Fs:        fs,
	}
	ctx := cmd.Context()
	if err := r.Run(ctx, p.Jobs); err != nil {
		return err
	}
	if !f.Watch {
		return nil
	}

	return watch.Watch(ctx, filepath.Join(source, discover.APIDir), 0, func(ctx context.Context, rels []string) error {
		p, err := buildPlan(fs, source, output, &opts)
		if err != nil {
			return err
		}
		jobs := p.Select(rels...)
		logging.Info("changed", zap.Strings("schemas", rels), zap.Int("jobs", len(jobs)))
		return r.Run(ctx, jobs)
	})
}

func buildPlan(fs afero.Fs, source, output string, opts *Options) (*plan.Plan, error) {
	schemas, err := discover.Walk(fs, source)
	if err != nil {
		return nil, err
	}
	return plan.Build(source, output, schemas, opts.planOptions())
}
