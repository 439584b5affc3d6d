package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Setup configures slog to write to stderr and, when logFile is set, to that
// file as well. format is "json" (JSONL) or "text".
// Returns a logger and a cleanup function to close the file handle.
func Setup(logFile, format string, level slog.Level) (*slog.Logger, func(), error) {
	return setup(os.Stderr, logFile, format, level)
}

func setup(stderr io.Writer, logFile, format string, level slog.Level) (*slog.Logger, func(), error) {
	w := stderr
	cleanup := func() {}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(stderr, f)
		cleanup = func() {
			_ = f.Close()
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "json", "":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		cleanup()
		return nil, nil, fmt.Errorf("unknown log format: %s (valid: json, text)", format)
	}

	return slog.New(handler), cleanup, nil
}
