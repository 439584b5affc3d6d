package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/bndr/gotabulate"
	"golang.org/x/sync/errgroup"

	"github.com/olehluchkiv/descgen/internal/analyzer"
	"github.com/olehluchkiv/descgen/internal/cache"
	"github.com/olehluchkiv/descgen/internal/generator"
	"github.com/olehluchkiv/descgen/internal/logging"
	"github.com/olehluchkiv/descgen/internal/marker"
	"github.com/olehluchkiv/descgen/internal/output"
	"github.com/olehluchkiv/descgen/internal/pipeline"
	"github.com/olehluchkiv/descgen/internal/resolver"
)

type options struct {
	dir               string
	patterns          []string
	marker            string
	receiver          string
	host              string
	funcName          string
	output            string
	outDir            string
	pkg               string
	onDuplicate       generator.DuplicatePolicy
	order             generator.Order
	includeUnexported bool
	tags              []string
	list              bool
	noCache           bool
	cacheDir          string
	logFile           string
	logLevel          slog.Level
	logFormat         string
}

func main() {
	// Flags may follow the package patterns, as in "descgen ./... -list".
	flags, positional := reorderArgs(os.Args[1:])

	opts, err := parseOptions(flags, positional, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "descgen: %v\n", err)
		os.Exit(2)
	}

	logger, logCleanup, err := logging.Setup(opts.logFile, opts.logFormat, opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, opts, os.Stdout, os.Stderr, logger)
	logCleanup()
	cancel()
	os.Exit(code)
}

// run executes one generation pass and returns the process exit code.
func run(ctx context.Context, opts *options, stdout, stderr io.Writer, logger *slog.Logger) int {
	target, err := resolver.Resolve(opts.dir, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error resolving %s: %v\n", opts.dir, err)
		return 1
	}

	pkgs, err := analyzer.Load(ctx, target.Dir, opts.patterns, analyzer.Options{
		Marker:            marker.Identity(opts.marker),
		Receiver:          opts.receiver,
		IncludeUnexported: opts.includeUnexported,
		HostType:          opts.host,
		SkipFile:          opts.output,
		BuildTags:         opts.tags,
	}, logger)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		fmt.Fprintf(stderr, "Error loading packages: %v\n", err)
		return 1
	}
	if opts.outDir != "" && len(pkgs) > 1 {
		fmt.Fprintf(stderr, "Error: -out-dir needs exactly one package, got %d\n", len(pkgs))
		return 1
	}

	var sink pipeline.Sink = &output.FileSink{Dir: opts.outDir, Logger: logger}
	if opts.list {
		sink = discardSink{}
	}

	cfg := pipeline.Config{
		Marker:      marker.Identity(opts.marker),
		OnDuplicate: opts.onDuplicate,
		Order:       opts.order,
		Render: generator.RenderOptions{
			ArtifactName: opts.output,
			PackageName:  opts.pkg,
			HostType:     opts.host,
			FuncName:     opts.funcName,
		},
	}
	if !opts.noCache && !opts.list {
		if store, err := openCache(opts.cacheDir); err != nil {
			logger.Warn("cache disabled", "error", err)
		} else {
			cfg.Cache = store
		}
	}

	p, err := pipeline.New(cfg, sink, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	results := make([]*pipeline.Result, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Run(pkg.Compilation, pkg.Elements)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "Interrupted: %v\n", err)
		return 1
	}

	code := 0
	for _, res := range results {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(stderr, d.String())
		}
		if res.HasErrors() {
			code = 1
		}
	}

	if opts.list {
		fmt.Fprint(stdout, renderTable(pkgs, results))
		return code
	}
	for _, res := range results {
		if res.Artifact != nil {
			fmt.Fprintf(stdout, "%s: %d descriptions -> %s\n", res.Package, len(res.Entries), res.Artifact.Name)
		}
	}
	return code
}

func parseOptions(flags, positional []string, usageOut io.Writer) (*options, error) {
	fs := flag.NewFlagSet("descgen", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	opts := &options{}
	fs.StringVar(&opts.dir, "dir", ".", "directory to load packages from")
	fs.StringVar(&opts.marker, "marker", "description", "marker name to look for, e.g. +description=\"...\"")
	fs.StringVar(&opts.receiver, "type", "", "only consider methods of this receiver type")
	fs.StringVar(&opts.host, "host", "App", "type passed to the generated function")
	fs.StringVar(&opts.funcName, "func", "ListMethodDescriptions", "name of the generated function")
	fs.StringVar(&opts.output, "output", "app_extension_generated.go", "generated file name")
	fs.StringVar(&opts.outDir, "out-dir", "", "write the generated file here instead of the package directory")
	fs.StringVar(&opts.pkg, "pkg", "", "package name of the generated file (default: the scanned package, or the -out-dir base name)")
	dup := fs.String("on-duplicate", "keep-last", "repeated method names: keep-last, keep-first or reject")
	order := fs.String("order", "sorted", "table order: sorted or declaration")
	fs.BoolVar(&opts.includeUnexported, "include-unexported", false, "include unexported methods")
	tags := fs.String("tags", "", "comma-separated build tags")
	fs.BoolVar(&opts.list, "list", false, "print the descriptions as a table instead of writing a file")
	fs.BoolVar(&opts.noCache, "no-cache", false, "always validate and render, ignoring the previous run")
	fs.StringVar(&opts.cacheDir, "cache-dir", "", "cache directory (default: user cache dir)")
	fs.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
	logLevel := fs.String("log-level", "warn", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (json, text)")

	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	opts.patterns = append(positional, fs.Args()...)

	var err error
	if opts.onDuplicate, err = generator.ParseDuplicatePolicy(*dup); err != nil {
		return nil, err
	}
	if opts.order, err = generator.ParseOrder(*order); err != nil {
		return nil, err
	}
	if opts.logLevel, err = parseLogLevel(*logLevel); err != nil {
		return nil, err
	}
	if *tags != "" {
		opts.tags = strings.Split(*tags, ",")
	}
	if opts.marker == "" {
		return nil, fmt.Errorf("-marker must not be empty")
	}
	if opts.pkg != "" && opts.outDir == "" {
		return nil, fmt.Errorf("-pkg requires -out-dir: a directory holds a single package")
	}
	if opts.outDir != "" && opts.pkg == "" {
		opts.pkg = filepath.Base(opts.outDir)
	}
	return opts, nil
}

func openCache(dir string) (*cache.Store, error) {
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.Open(dir)
}

// discardSink accepts artifacts without writing them, for -list.
type discardSink struct{}

func (discardSink) AddSource(pipeline.Compilation, *generator.Artifact) error { return nil }

func renderTable(pkgs []*analyzer.Package, results []*pipeline.Result) string {
	var rows [][]any
	for i, res := range results {
		locations := make(map[string]string)
		for _, m := range pkgs[i].Methods() {
			if _, ok := locations[m.Name()]; !ok {
				locations[m.Name()] = fmt.Sprintf("%s:%d", m.SourceFile, m.Line)
			}
		}
		for _, e := range res.Entries {
			rows = append(rows, []any{res.Package, e.Qualifier, generator.Unescape(e.Description), locations[e.Qualifier]})
		}
	}
	if len(rows) == 0 {
		return "No described methods found.\n"
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"Package", "Method", "Description", "Location"})
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	return t.Render("grid")
}

// reorderArgs separates flags and positional arguments so flags can appear
// in any position (before or after the package patterns).
// Flags that take a value (e.g., -output file.go) consume the next arg.
func reorderArgs(args []string) (flags, positional []string) {
	// Set of flags that take a value argument
	valueFlagSet := map[string]bool{
		"-dir": true, "-marker": true, "-type": true, "-host": true,
		"-func": true, "-output": true, "-out-dir": true, "-pkg": true,
		"-on-duplicate": true, "-order": true, "-tags": true, "-cache-dir": true,
		"-log-file": true, "-log-level": true, "-log-format": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			// Check if this flag takes a value (and it's not using = syntax)
			name := "-" + strings.TrimLeft(arg, "-")
			if !strings.Contains(arg, "=") && valueFlagSet[name] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return flags, positional
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (valid: debug, info, warn, error)", s)
	}
}
