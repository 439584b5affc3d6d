package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/descgen/internal/generator"
)

// ---------------------------------------------------------------------------
// reorderArgs tests
// ---------------------------------------------------------------------------

func TestReorderArgs_NoArgs(t *testing.T) {
	// go:generate usually runs "descgen" with no arguments: the package in
	// the current directory is processed.
	flags, positional := reorderArgs(nil)
	assert.Nil(t, flags)
	assert.Nil(t, positional)
}

func TestReorderArgs_PatternsOnly(t *testing.T) {
	flags, positional := reorderArgs([]string{"./...", "./cmd"})
	assert.Nil(t, flags)
	assert.Equal(t, []string{"./...", "./cmd"}, positional)
}

func TestReorderArgs_PatternBeforeFlags(t *testing.T) {
	flags, positional := reorderArgs([]string{"./...", "-marker", "app:description", "-list"})
	assert.Equal(t, []string{"-marker", "app:description", "-list"}, flags)
	assert.Equal(t, []string{"./..."}, positional)
}

func TestReorderArgs_ValueFlagWithEquals(t *testing.T) {
	flags, positional := reorderArgs([]string{"-output=gen.go", "."})
	assert.Equal(t, []string{"-output=gen.go"}, flags)
	assert.Equal(t, []string{"."}, positional)
}

func TestReorderArgs_DoubleHyphenValueFlag(t *testing.T) {
	flags, positional := reorderArgs([]string{"--type", "App", "."})
	assert.Equal(t, []string{"--type", "App"}, flags)
	assert.Equal(t, []string{"."}, positional)
}

func TestReorderArgs_BooleanFlagDoesNotConsumeNextArg(t *testing.T) {
	for _, flag := range []string{"-list", "-no-cache", "-include-unexported"} {
		t.Run(flag, func(t *testing.T) {
			flags, positional := reorderArgs([]string{flag, "./pkg"})
			assert.Equal(t, []string{flag}, flags)
			assert.Equal(t, []string{"./pkg"}, positional)
		})
	}
}

func TestReorderArgs_AllValueFlags(t *testing.T) {
	args := []string{
		"-dir", "/tmp/repo",
		"-marker", "description",
		"-type", "App",
		"-host", "App",
		"-func", "Describe",
		"-output", "gen.go",
		"-out-dir", "gen",
		"-pkg", "gen",
		"-on-duplicate", "reject",
		"-order", "declaration",
		"-tags", "integration",
		"-cache-dir", "/tmp/cache",
		"-log-file", "descgen.log",
		"-log-level", "debug",
		"-log-format", "json",
	}
	flags, positional := reorderArgs(args)
	assert.Equal(t, args, flags)
	assert.Nil(t, positional)
}

func TestReorderArgs_ValueFlagAtEnd(t *testing.T) {
	// flag.Parse reports the missing value.
	flags, positional := reorderArgs([]string{"-output"})
	assert.Equal(t, []string{"-output"}, flags)
	assert.Nil(t, positional)
}

// ---------------------------------------------------------------------------
// parseLogLevel tests
// ---------------------------------------------------------------------------

func TestParseLogLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"Error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLogLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	_, err := parseLogLevel("trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "trace")
}

// ---------------------------------------------------------------------------
// parseOptions tests
// ---------------------------------------------------------------------------

func TestParseOptions_Defaults(t *testing.T) {
	opts, err := parseOptions(nil, nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ".", opts.dir)
	assert.Equal(t, "description", opts.marker)
	assert.Equal(t, "App", opts.host)
	assert.Equal(t, "ListMethodDescriptions", opts.funcName)
	assert.Equal(t, "app_extension_generated.go", opts.output)
	assert.Equal(t, generator.KeepLast, opts.onDuplicate)
	assert.Equal(t, generator.OrderSorted, opts.order)
	assert.Equal(t, slog.LevelWarn, opts.logLevel)
	assert.Empty(t, opts.patterns)
}

func TestParseOptions_Overrides(t *testing.T) {
	flags, positional := reorderArgs([]string{
		"./a", "-on-duplicate", "reject", "-order", "declaration", "-tags", "x,y", "-out-dir", "gen/appdesc",
	})
	opts, err := parseOptions(flags, positional, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, generator.Reject, opts.onDuplicate)
	assert.Equal(t, generator.OrderDeclaration, opts.order)
	assert.Equal(t, []string{"x", "y"}, opts.tags)
	assert.Equal(t, "appdesc", opts.pkg, "package name defaults to the -out-dir base name")
	assert.Equal(t, []string{"./a"}, opts.patterns)
}

func TestParseOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"bad policy", []string{"-on-duplicate", "newest"}, "unknown duplicate policy"},
		{"bad order", []string{"-order", "random"}, "unknown order"},
		{"bad level", []string{"-log-level", "trace"}, "unknown log level"},
		{"empty marker", []string{"-marker", ""}, "-marker must not be empty"},
		{"pkg without out-dir", []string{"-pkg", "gen"}, "-pkg requires -out-dir"},
		{"unknown flag", []string{"-port", "80"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions(tt.args, nil, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// ---------------------------------------------------------------------------
// run tests
// ---------------------------------------------------------------------------

func testdataDir(name string) string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(wd, "testdata", name)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func runWith(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	flags, positional := reorderArgs(append([]string{"-dir", dir, "-no-cache"}, args...))
	opts, err := parseOptions(flags, positional, io.Discard)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), opts, &stdout, &stderr, testLogger())
	return code, stdout.String(), stderr.String()
}

func TestRun_WritesArtifactToOutDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "appdesc")
	code, stdout, stderr := runWith(t, testdataDir("01_single_method"), "-out-dir", out)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "example.com/testmod: 1 descriptions -> app_extension_generated.go")

	data, err := os.ReadFile(filepath.Join(out, "app_extension_generated.go"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "package appdesc\n")
	assert.Contains(t, content, `import app "example.com/testmod"`)
	assert.Contains(t, content, `"Greet": "Say hello",`)
}

func TestRun_List(t *testing.T) {
	code, stdout, stderr := runWith(t, testdataDir("02_escaped_quotes"), "-list")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Method")
	assert.Contains(t, stdout, `He said "hi"`)
	assert.Contains(t, stdout, "app.go:6")
}

func TestRun_NoMarkersWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "appdesc")
	code, stdout, _ := runWith(t, testdataDir("03_no_markers"), "-out-dir", out)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.NoDirExists(t, out)
}

func TestRun_DuplicatesKeepLastWarns(t *testing.T) {
	code, stdout, stderr := runWith(t, testdataDir("04_duplicates"), "-list")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "D001 warning")
	assert.Contains(t, stdout, "two")
	assert.NotContains(t, stdout, "one")
}

func TestRun_DuplicatesRejected(t *testing.T) {
	code, _, stderr := runWith(t, testdataDir("04_duplicates"), "-list", "-on-duplicate", "reject")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "D002 error")
}

func TestRun_BadDirectory(t *testing.T) {
	code, _, stderr := runWith(t, filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error resolving")
}
