package analyzer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/olehluchkiv/descgen/internal/generator"
	"github.com/olehluchkiv/descgen/internal/marker"
	"github.com/olehluchkiv/descgen/internal/pipeline"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedModule

// Load loads the packages matching patterns from dir and surfaces, for each
// of them, the method declarations carrying a marker of opts.Marker.
func Load(ctx context.Context, dir string, patterns []string, opts Options, logger *slog.Logger) ([]*Package, error) {
	if opts.Marker == "" {
		return nil, fmt.Errorf("marker identity is required")
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Mode:    loadMode,
		Dir:     dir,
		Context: ctx,
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.BuildTags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	logger.Info("packages loaded", "packages_count", len(pkgs))

	// Log packages with errors but continue
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			logger.Warn("package load error", "package", pkg.PkgPath, "error", e.Msg)
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	var out []*Package
	for _, pkg := range pkgs {
		if len(pkg.Syntax) == 0 {
			logger.Warn("package has no syntax, skipping", "package", pkg.PkgPath)
			continue
		}
		p := scanPackage(pkg, dir, opts, logger)
		logger.Info("package scanned", "package", pkg.PkgPath, "elements", len(p.Elements))
		out = append(out, p)
	}
	return out, nil
}

func scanPackage(pkg *packages.Package, dir string, opts Options, logger *slog.Logger) *Package {
	p := &Package{Compilation: compilationOf(pkg)}

	if opts.HostType != "" && pkg.Types != nil {
		if _, ok := pkg.Types.Scope().Lookup(opts.HostType).(*types.TypeName); ok {
			p.HasHostType = true
		} else {
			logger.Warn("host type not declared in package", "package", pkg.PkgPath, "type", opts.HostType)
		}
	}

	files := make([]*ast.File, len(pkg.Syntax))
	copy(files, pkg.Syntax)
	sort.SliceStable(files, func(i, j int) bool {
		return fileName(pkg.Fset, files[i]) < fileName(pkg.Fset, files[j])
	})

	for _, f := range files {
		name := fileName(pkg.Fset, f)
		if opts.SkipFile != "" && filepath.Base(name) == opts.SkipFile {
			logger.Debug("skipping generated file", "file", name)
			continue
		}
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 || fd.Doc == nil {
				continue
			}
			el, ok := scanMethod(pkg, fd, dir, opts, logger)
			if !ok {
				continue
			}
			p.Elements = append(p.Elements, el)
		}
	}
	return p
}

// scanMethod returns the element for fd when it carries the marker and passes
// the filters. A nil *MethodElement is returned for marked methods whose
// symbol did not resolve.
func scanMethod(pkg *packages.Package, fd *ast.FuncDecl, dir string, opts Options, logger *slog.Logger) (generator.Element, bool) {
	markers, errs := marker.ParseGroup(fd.Doc)
	for _, err := range errs {
		logger.Debug("malformed marker ignored", "method", fd.Name.Name, "error", err)
	}
	if _, ok := marker.Find(markers, opts.Marker); !ok {
		return nil, false
	}

	recv := receiverTypeName(fd.Recv.List[0].Type)
	if !keepMethod(fd.Name.Name, recv, opts) {
		logger.Debug("method filtered out", "method", fd.Name.Name, "receiver", recv)
		return nil, false
	}

	var fn *types.Func
	if pkg.TypesInfo != nil {
		fn, _ = pkg.TypesInfo.Defs[fd.Name].(*types.Func)
	}
	if fn == nil {
		logger.Warn("method symbol did not resolve", "package", pkg.PkgPath, "method", fd.Name.Name)
		return (*MethodElement)(nil), true
	}

	position := pkg.Fset.Position(fd.Pos())
	el := &MethodElement{
		Method:     fd.Name.Name,
		Receiver:   recv,
		Signature:  formatSignature(fn),
		Markers:    markers,
		Func:       fn,
		SourceFile: resolveSourceFile(pkg.Fset, fd.Pos(), dir),
		Line:       position.Line,
	}
	logger.Debug("found described method", "receiver", recv, "method", el.Method, "file", el.SourceFile)
	return el, true
}

func compilationOf(pkg *packages.Package) pipeline.Compilation {
	comp := pipeline.Compilation{
		PkgPath:     pkg.PkgPath,
		PkgName:     pkg.Name,
		Fingerprint: fingerprintFiles(pkg.GoFiles),
	}
	if len(pkg.GoFiles) > 0 {
		comp.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	if pkg.Module != nil {
		comp.ModulePath = pkg.Module.Path
	}
	return comp
}

// fingerprintFiles digests the name, size and modification time of every
// file so runs can be correlated with the state of the package on disk.
func fingerprintFiles(files []string) string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, f := range sorted {
		info, err := os.Stat(f)
		if err != nil {
			fmt.Fprintf(h, "%s\x00missing\x00", f)
			continue
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\x00", f, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}

func fileName(fset *token.FileSet, f *ast.File) string {
	if tf := fset.File(f.Pos()); tf != nil {
		return tf.Name()
	}
	return ""
}

func formatSignature(fn *types.Func) string {
	sig := fn.Type().(*types.Signature)
	var b strings.Builder
	b.WriteString(fn.Name())
	b.WriteString("(")
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		p := params.At(i)
		if sig.Variadic() && i == params.Len()-1 {
			b.WriteString("...")
			b.WriteString(shortType(p.Type().(*types.Slice).Elem()))
			continue
		}
		b.WriteString(shortType(p.Type()))
	}
	b.WriteString(")")
	results := sig.Results()
	if results.Len() > 0 {
		b.WriteString(" ")
		if results.Len() == 1 {
			b.WriteString(shortType(results.At(0).Type()))
		} else {
			b.WriteString("(")
			for i := 0; i < results.Len(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(shortType(results.At(i).Type()))
			}
			b.WriteString(")")
		}
	}
	return b.String()
}

func shortType(t types.Type) string {
	return types.TypeString(t, func(pkg *types.Package) string {
		return pkg.Name()
	})
}

// resolveSourceFile resolves a token position to a file path relative to root.
func resolveSourceFile(fset *token.FileSet, pos token.Pos, root string) string {
	if fset == nil || !pos.IsValid() {
		return ""
	}
	position := fset.Position(pos)
	if !position.IsValid() || position.Filename == "" {
		return ""
	}
	rel, err := filepath.Rel(root, position.Filename)
	if err != nil {
		return position.Filename
	}
	return rel
}
