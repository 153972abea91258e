package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codellm-devkit/typeextractor-go/internal/config"
	"github.com/codellm-devkit/typeextractor-go/internal/errors"
	"github.com/codellm-devkit/typeextractor-go/internal/loader"
	"github.com/codellm-devkit/typeextractor-go/internal/mcpserver"
	"github.com/codellm-devkit/typeextractor-go/internal/observability"
	"github.com/codellm-devkit/typeextractor-go/internal/output"
	"github.com/codellm-devkit/typeextractor-go/internal/query"
)

const version = "1.0.0"

type cliConfig struct {
	// Query
	pos     string
	backend string
	unit    string

	// Output
	format    string
	outputDir string

	// Loader
	includeTests bool
	tags         string
	excludeDirs  string

	// Ambiente
	configPath  string
	metricsFile string
	profile     bool
	verbose     bool
	quiet       bool
	showVersion bool
	help        bool

	paths []string
	set   map[string]bool // flag passati esplicitamente
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "[error] internal error: %v\n", r)
			code = errors.ExitUnhandledError
		}
	}()

	if len(args) > 0 && args[0] == "mcp" {
		return runMCP(args[1:], stderr)
	}

	fs := flag.NewFlagSet("typeextractor-go", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := parseFlags(fs, args)
	if err == flag.ErrHelp {
		return errors.ExitSuccess
	}
	if err != nil {
		return errors.ExitError
	}

	if cfg.showVersion {
		fmt.Fprintf(stdout, "typeextractor-go %s\n", version)
		return errors.ExitSuccess
	}
	if cfg.help || len(cfg.paths) == 0 {
		fs.Usage()
		return errors.ExitSuccess
	}

	fileCfg, err := loadConfig(cfg.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "[error] configuration error: %v\n", err)
		return errors.ExitConfigError
	}
	mergeConfig(&cfg, fileCfg)
	log := setupLogging(stderr, cfg, fileCfg.Log.Level)

	if err := validateConfig(&cfg); err != nil {
		log.Error("configuration error", "error", err)
		return errors.ExitCode(err)
	}
	line, column, err := query.ParsePosition(cfg.pos)
	if err != nil {
		log.Error("invalid position", "error", err)
		fs.Usage()
		return errors.ExitCode(err)
	}

	ctx := context.Background()
	shutdown, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint: fileCfg.Tracing.Endpoint,
		Insecure: fileCfg.Tracing.Insecure,
	})
	if err != nil {
		log.Error("tracing setup failed", "error", err)
		return errors.ExitConfigError
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	return runQuery(ctx, cfg, query.Request{
		Paths:   cfg.paths,
		Unit:    cfg.unit,
		Line:    line,
		Column:  column,
		Backend: cfg.backend,
		Load: loader.Options{
			IncludeTest: cfg.includeTests,
			BuildTags:   splitCSV(cfg.tags),
			ExcludeDirs: splitCSV(cfg.excludeDirs),
		},
	}, fileCfg.IndentJSON(), stdout, stderr, log)
}

func parseFlags(fs *flag.FlagSet, args []string) (cliConfig, error) {
	var cfg cliConfig

	fs.StringVar(&cfg.pos, "pos", "", "Position to query: <line>,<column> (1-based, byte column)")
	fs.StringVar(&cfg.backend, "backend", "types", "AST backend: types|syntax")
	fs.StringVar(&cfg.backend, "b", "types", "AST backend (shorthand)")
	fs.StringVar(&cfg.unit, "unit", "", "File to query when several are given (default: first file)")
	fs.StringVar(&cfg.format, "format", "text", "Output format: text|json")
	fs.StringVar(&cfg.format, "f", "text", "Output format (shorthand)")
	fs.StringVar(&cfg.outputDir, "output", "", "Output directory (omit for stdout)")
	fs.StringVar(&cfg.outputDir, "o", "", "Output directory (shorthand)")

	fs.BoolVar(&cfg.includeTests, "include-tests", false, "Include *_test.go files")
	fs.StringVar(&cfg.tags, "tags", "", "Comma-separated build tags")
	fs.StringVar(&cfg.excludeDirs, "exclude-dirs", "", "Comma-separated glob patterns of directories to skip (e.g., gen*,mocks)")

	fs.StringVar(&cfg.configPath, "config", "", "Path to config file (default: ./.typeextractor.toml if present)")
	fs.StringVar(&cfg.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	fs.BoolVar(&cfg.profile, "profile", false, "Print load and resolve timings to stderr")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Enable verbose logging to stderr")
	fs.BoolVar(&cfg.verbose, "v", false, "Enable verbose logging (shorthand)")
	fs.BoolVar(&cfg.quiet, "quiet", false, "Suppress all non-error output")
	fs.BoolVar(&cfg.quiet, "q", false, "Suppress non-error output (shorthand)")
	fs.BoolVar(&cfg.showVersion, "version", false, "Show version and exit")
	fs.BoolVar(&cfg.help, "help", false, "Show usage and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: typeextractor-go -pos <line>,<column> [flags] <file|dir>...\n")
		fmt.Fprintf(fs.Output(), "       typeextractor-go mcp [-config path] [-verbose]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.paths = fs.Args()
	cfg.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, nil
}

// loadConfig reads path, or the config file found in the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return config.Default(), nil
		}
		if path = config.Discover(cwd); path == "" {
			return config.Default(), nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "load config")
	}
	return cfg, nil
}

// mergeConfig fills the flags not given on the command line from the file.
func mergeConfig(cfg *cliConfig, file *config.Config) {
	given := func(names ...string) bool {
		for _, n := range names {
			if cfg.set[n] {
				return true
			}
		}
		return false
	}
	if !given("backend", "b") {
		cfg.backend = file.Backend
	}
	if !given("format", "f") {
		cfg.format = file.Output.Format
	}
	if !given("output", "o") {
		cfg.outputDir = file.Output.Dir
	}
	if !given("include-tests") {
		cfg.includeTests = file.Load.IncludeTests
	}
	if !given("tags") {
		cfg.tags = strings.Join(file.Load.BuildTags, ",")
	}
	if !given("exclude-dirs") {
		cfg.excludeDirs = strings.Join(file.Load.ExcludeDirs, ",")
	}
	if !given("metrics-file") {
		cfg.metricsFile = file.Metrics.Textfile
	}
}

func validateConfig(cfg *cliConfig) error {
	cfg.backend = strings.ToLower(strings.TrimSpace(cfg.backend))
	if err := config.ValidateBackend(cfg.backend); err != nil {
		return errors.Wrap(err, errors.CodeConfig, "invalid backend")
	}
	cfg.format = strings.ToLower(strings.TrimSpace(cfg.format))
	if err := config.ValidateFormat(cfg.format); err != nil {
		return errors.Wrap(err, errors.CodeConfig, "invalid format")
	}
	if cfg.verbose && cfg.quiet {
		return errors.New(errors.CodeUsage, "-verbose and -quiet cannot be used together")
	}
	return nil
}

func runQuery(ctx context.Context, cfg cliConfig, req query.Request, indent bool, stdout, stderr io.Writer, log *slog.Logger) int {
	log.Debug("starting query",
		"paths", req.Paths, "line", req.Line, "column", req.Column,
		"backend", req.Backend, "go", runtime.Version())

	if req.Backend == query.BackendTypes {
		if err := loader.VerifyStdlib(ctx, workDir(req.Paths)); err != nil {
			log.Error("cannot load the Go standard library", "error", err)
			return errors.ExitUnhandledError
		}
	}

	runner := &query.Runner{Version: version, Logger: log}
	res, err := runner.Run(ctx, req)
	if err != nil {
		log.Error("query failed", "error", err)
		writeMetrics(cfg.metricsFile, log)
		return errors.ExitCode(err)
	}

	if cfg.profile {
		fmt.Fprintf(stderr, "[profile] load=%dms resolve=%s nodes=%d units=%d\n",
			res.Metadata.LoadDurationMs, res.Metadata.ResolveDuration,
			res.Metadata.TreeSize, res.Metadata.CompilationUnits)
	}

	outCfg := output.Config{
		OutputDir: cfg.outputDir,
		Format:    output.Format(cfg.format),
		Indent:    indent,
	}
	if err := output.Write(res, outCfg, stdout); err != nil {
		log.Error("write output", "error", err)
		return errors.ExitError
	}
	writeMetrics(cfg.metricsFile, log)

	if res.Match == nil {
		return errors.ExitError
	}
	return errors.ExitSuccess
}

func writeMetrics(path string, log *slog.Logger) {
	if path == "" {
		return
	}
	if err := observability.WriteTextfile(path); err != nil {
		log.Warn("write metrics", "path", path, "error", err)
	}
}

// runMCP serves the type_at tool on stdio until stdin closes.
func runMCP(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("typeextractor-go mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	verbose := fs.Bool("verbose", false, "Enable verbose logging to stderr")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errors.ExitSuccess
		}
		return errors.ExitError
	}

	fileCfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "[error] configuration error: %v\n", err)
		return errors.ExitConfigError
	}
	log := setupLogging(stderr, cliConfig{verbose: *verbose}, fileCfg.Log.Level)

	ctx := context.Background()
	shutdown, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint: fileCfg.Tracing.Endpoint,
		Insecure: fileCfg.Tracing.Insecure,
	})
	if err != nil {
		log.Error("tracing setup failed", "error", err)
		return errors.ExitConfigError
	}
	defer shutdown(ctx)

	runner := &query.Runner{Version: version, Logger: log}
	s := mcpserver.New(fileCfg.MCP.ServerName, version, mcpserver.NewHandler(runner, fileCfg, log))
	log.Info("serving MCP on stdio", "tool", mcpserver.ToolName)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		return errors.ExitUnhandledError
	}
	return errors.ExitSuccess
}

// ============================================================================
// Helper functions
// ============================================================================

// setupLogging installs a text slog handler on stderr. -verbose and -quiet
// win over the configured level.
func setupLogging(w io.Writer, cfg cliConfig, level string) *slog.Logger {
	var lvl slog.Level
	switch {
	case cfg.verbose:
		lvl = slog.LevelDebug
	case cfg.quiet:
		lvl = slog.LevelError
	default:
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = slog.LevelWarn
		}
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// workDir returns the directory of the first input, where the go command
// picks the same toolchain the loader will use.
func workDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	st, err := os.Stat(paths[0])
	if err != nil {
		return ""
	}
	if !st.IsDir() {
		return filepath.Dir(paths[0])
	}
	return paths[0]
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
