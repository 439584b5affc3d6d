// Package output writes generated artifacts to disk.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olehluchkiv/descgen/internal/generator"
	"github.com/olehluchkiv/descgen/internal/pipeline"
)

// FileSink writes each artifact next to the package it was generated for,
// or into Dir when set.
type FileSink struct {
	Dir    string
	Logger *slog.Logger
}

var _ pipeline.Sink = (*FileSink)(nil)

// AddSource replaces the artifact file atomically. A file that already holds
// identical content is left untouched so its modification time is stable.
func (s *FileSink) AddSource(comp pipeline.Compilation, a *generator.Artifact) error {
	dest, err := s.path(comp, a)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(dest)
	switch {
	case err == nil && bytes.Equal(existing, a.Content):
		s.logger().Debug("artifact unchanged", "path", dest)
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading %s: %w", dest, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := writeAtomic(dest, a.Content); err != nil {
		return err
	}
	s.logger().Info("artifact written", "path", dest, "bytes", len(a.Content))
	return nil
}

func (s *FileSink) path(comp pipeline.Compilation, a *generator.Artifact) (string, error) {
	name := filepath.Clean(a.Name)
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("artifact name %q must be a plain file name", a.Name)
	}
	dir := s.Dir
	if dir == "" {
		dir = comp.Dir
	}
	if dir == "" {
		return "", fmt.Errorf("no output directory for %s", comp.PkgPath)
	}
	return filepath.Join(dir, name), nil
}

func (s *FileSink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func writeAtomic(dest string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, 0o644)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", dest, err)
	}
	return nil
}
