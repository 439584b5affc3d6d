package resolver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Target is a resolved package directory and the module that contains it.
type Target struct {
	Dir        string // absolute package directory
	ModuleRoot string // directory holding go.mod
	ModulePath string // module path declared in go.mod
	GoVersion  string // go directive, empty when absent
}

// Resolve turns a local path into an absolute directory and locates the
// enclosing module.
func Resolve(input string, logger *slog.Logger) (*Target, error) {
	if input == "" {
		input = "."
	}
	absPath, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absPath)
	}

	modRoot, err := findModuleRoot(absPath)
	if err != nil {
		return nil, err
	}
	mf, err := readModFile(filepath.Join(modRoot, "go.mod"))
	if err != nil {
		return nil, err
	}

	t := &Target{Dir: absPath, ModuleRoot: modRoot}
	if mf.Module != nil {
		t.ModulePath = mf.Module.Mod.Path
	}
	if mf.Go != nil {
		t.GoVersion = mf.Go.Version
	}

	logger.Info("resolved local directory",
		"input", input, "module_root", modRoot, "module", t.ModulePath, "go", t.GoVersion)
	return t, nil
}

func readModFile(path string) (*modfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	mf, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if mf.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", path)
	}
	return mf, nil
}

func findModuleRoot(dir string) (string, error) {
	current := dir
	for {
		goMod := filepath.Join(current, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no go.mod found in %s or any parent directory", dir)
		}
		current = parent
	}
}
