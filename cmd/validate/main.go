package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/paulhiggs/dvb-i-tools-sub001/config"
	"github.com/paulhiggs/dvb-i-tools-sub001/diagnostics"
	"github.com/paulhiggs/dvb-i-tools-sub001/source"
	"github.com/paulhiggs/dvb-i-tools-sub001/validator"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitValid   = 0
	exitInvalid = 1
	exitFatal   = 2
)

type options struct {
	configPath string
	profile    string
	schema     string
	languages  string
	schemes    []string
	leafOnly   bool
	format     string
	color      string
	async      bool
	strict     bool
	stop       bool
	verbose    bool
}

// exitError carries a process exit code through cobra.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "validate [flags] <file.xml>...",
		Short: "Validate DVB-I service lists and content guides",
		Long: `validate checks XML metadata against an XML schema, a profile of element
rules, controlled vocabularies and the IANA language subtag registry.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")
	flags.StringVar(&opts.profile, "profile", "", "profile of element rules (file or URL, optional #/json/pointer)")
	flags.StringVar(&opts.schema, "schema", "", "XML schema the documents must conform to")
	flags.StringVar(&opts.languages, "languages", "", "IANA language subtag registry (file or URL)")
	flags.StringArrayVar(&opts.schemes, "scheme", nil, "classification scheme as name=src[,src] (repeatable)")
	flags.BoolVar(&opts.leafOnly, "leaf-only", false, "only accept leaf terms of schemes given with --scheme")
	flags.StringVarP(&opts.format, "format", "f", "pretty", "output format (pretty|annotated|json)")
	flags.StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")
	flags.BoolVar(&opts.async, "async", false, "load reference data concurrently")
	flags.BoolVar(&opts.strict, "strict", false, "report warnings as errors")
	flags.BoolVar(&opts.stop, "stop-on-structure-error", false, "skip the content of elements with missing or unexpected children")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log loading progress to stderr")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitFatal)
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, files []string) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	switch opts.format {
	case "pretty", "annotated", "json":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	file, err := buildConfigFile(opts)
	if err != nil {
		return err
	}
	mode := source.Blocking
	if opts.async {
		mode = source.NonBlocking
	}
	cfg, err := file.Build(ctx, mode)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	color := useColor(opts.color)
	code := exitValid
	for _, path := range files {
		c, err := validateFile(ctx, cmd, cfg, path, opts.format, color)
		if err != nil {
			return err
		}
		code = max(code, c)
	}
	if code != exitValid {
		return exitError{code: code}
	}
	return nil
}

// buildConfigFile merges the command line over the configuration file.
func buildConfigFile(opts *options) (*config.File, error) {
	file := &config.File{}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		file = loaded
	}
	if opts.profile != "" {
		file.Profile = opts.profile
	}
	if opts.schema != "" {
		file.Schema = opts.schema
	}
	if opts.languages != "" {
		file.Languages = opts.languages
	}
	for _, s := range opts.schemes {
		scheme, err := parseSchemeFlag(s)
		if err != nil {
			return nil, err
		}
		scheme.LeafOnly = opts.leafOnly
		file.AddScheme(scheme)
	}
	file.Validation.Strict = file.Validation.Strict || opts.strict
	file.Validation.StopOnStructureError = file.Validation.StopOnStructureError || opts.stop
	return file, nil
}

// parseSchemeFlag parses "name=src[,src]".
func parseSchemeFlag(s string) (config.Scheme, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.TrimSpace(list) == "" {
		return config.Scheme{}, fmt.Errorf("invalid --scheme %q, expected name=src[,src]", s)
	}
	var sources []string
	for _, src := range strings.Split(list, ",") {
		if src = strings.TrimSpace(src); src != "" {
			sources = append(sources, src)
		}
	}
	return config.Scheme{Name: name, Sources: sources}, nil
}

func validateFile(ctx context.Context, cmd *cobra.Command, cfg validator.Config, path, format string, color bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return exitFatal, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cfg.SourceName = path
	// parse failures are reported as fatal findings
	sink, _, _, _ := validator.New(cfg).ValidateReader(ctx, f)
	if sink == nil {
		return exitFatal, fmt.Errorf("failed to read %s", path)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = validator.NewJSONReporter(out).Print(sink)
	case "annotated":
		fmt.Fprintf(out, "%s:\n", path)
		err = validator.NewAnnotatedReporter(out, color).Print(sink)
	default:
		err = validator.NewPrettyReporter(out, validator.PrettyConfig{
			Color:         color,
			ContextBefore: 1,
			ContextAfter:  1,
		}).Print(path, sink)
	}
	if err != nil {
		return exitFatal, fmt.Errorf("failed to print diagnostics: %w", err)
	}
	return exitCode(sink), nil
}

func exitCode(sink *diagnostics.Sink) int {
	switch {
	case sink.Count(diagnostics.SeverityFatal) > 0:
		return exitFatal
	case sink.HasErrors():
		return exitInvalid
	}
	return exitValid
}

func useColor(mode string) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
