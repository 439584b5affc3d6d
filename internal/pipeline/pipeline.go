// Package pipeline binds the generator steps to one loaded package: it runs
// Collect, Validate and Render, hands the artifact to a Sink, and turns every
// failure into a Diagnostic instead of aborting the caller.
package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olehluchkiv/descgen/internal/cache"
	"github.com/olehluchkiv/descgen/internal/generator"
)

// Pipeline is immutable after New; Run may be called concurrently for
// different compilations.
type Pipeline struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger
}

// New validates cfg and fills in render defaults.
func New(cfg Config, sink Sink, logger *slog.Logger) (*Pipeline, error) {
	if cfg.Marker == "" {
		return nil, fmt.Errorf("marker identity is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	def := generator.DefaultRenderOptions()
	if cfg.Render.ArtifactName == "" {
		cfg.Render.ArtifactName = def.ArtifactName
	}
	if cfg.Render.HostType == "" {
		cfg.Render.HostType = def.HostType
	}
	if cfg.Render.FuncName == "" {
		cfg.Render.FuncName = def.FuncName
	}
	if cfg.Render.Generator == "" {
		cfg.Render.Generator = def.Generator
	}
	return &Pipeline{cfg: cfg, sink: sink, logger: logger}, nil
}

// Run generates the artifact for one compilation from the elements the host
// surfaced for it. The sink is called at most once, and only when there is
// something to emit.
func (p *Pipeline) Run(comp Compilation, elements []generator.Element) (res *Result) {
	logger := p.logger.With("package", comp.PkgPath)
	res = &Result{Package: comp.PkgPath}

	defer func() {
		if r := recover(); r != nil {
			res.Artifact = nil
			res.Entries = nil
			res.Cached = false
			p.report(logger, res, Diagnostic{
				Severity: SeverityError,
				Code:     CodeInternal,
				Message:  fmt.Sprintf("generation panicked: %v", r),
			})
		}
	}()

	logger.Debug("generation started",
		"elements", len(elements), "fingerprint", comp.Fingerprint, "module", comp.ModulePath)

	cands := generator.Collect(elements, p.cfg.Marker)
	opts := p.renderOptions(comp)
	fp := p.fingerprint(opts, cands)
	key := cacheKey(comp, opts)

	if rec := p.lookup(logger, res, key, fp); rec != nil {
		res.Cached = true
		res.Entries = rec.Entries
		p.reportDuplicates(logger, res, rec.Duplicates)
		if rec.Content != nil {
			p.emit(logger, res, comp, &generator.Artifact{Name: rec.ArtifactName, Content: rec.Content})
		}
		logger.Info("generation skipped, candidates unchanged", "entries", len(rec.Entries))
		return res
	}

	set, dups, err := generator.Validate(cands, generator.ValidateOptions{
		OnDuplicate: p.cfg.OnDuplicate,
		Order:       p.cfg.Order,
	})
	var dupErr *generator.DuplicateQualifierError
	if errors.As(err, &dupErr) {
		p.report(logger, res, Diagnostic{
			Severity: SeverityError,
			Code:     CodeDuplicateRejected,
			Message:  err.Error(),
			Err:      err,
		})
		return res
	}
	p.reportDuplicates(logger, res, dups)
	res.Entries = set

	artifact, err := generator.Render(set, opts)
	if err != nil {
		res.Entries = nil
		p.report(logger, res, Diagnostic{
			Severity: SeverityError,
			Code:     CodeRender,
			Message:  fmt.Sprintf("rendering %s: %v", opts.ArtifactName, err),
			Err:      err,
		})
		return res
	}

	if artifact == nil {
		logger.Info("no described methods, nothing to emit")
	} else {
		p.emit(logger, res, comp, artifact)
	}
	if res.HasErrors() {
		return res
	}

	rec := &cache.Record{Fingerprint: fp, Entries: set, Duplicates: dups}
	if artifact != nil {
		rec.ArtifactName = artifact.Name
		rec.Content = artifact.Content
	}
	p.store(logger, res, key, rec)
	return res
}

func (p *Pipeline) emit(logger *slog.Logger, res *Result, comp Compilation, a *generator.Artifact) {
	if err := p.sink.AddSource(comp, a); err != nil {
		p.report(logger, res, Diagnostic{
			Severity: SeverityError,
			Code:     CodeSink,
			Message:  fmt.Sprintf("writing %s: %v", a.Name, err),
			Err:      err,
		})
		return
	}
	res.Artifact = a
	logger.Info("artifact registered", "artifact", a.Name, "entries", len(res.Entries))
}

func (p *Pipeline) reportDuplicates(logger *slog.Logger, res *Result, dups []generator.Duplicate) {
	for _, d := range dups {
		p.report(logger, res, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDuplicate,
			Message: fmt.Sprintf("method %s is described %d times, applying %s",
				d.Qualifier, len(d.Descriptions), p.cfg.OnDuplicate),
		})
	}
}

func (p *Pipeline) report(logger *slog.Logger, res *Result, d Diagnostic) {
	d.Package = res.Package
	res.Diagnostics = append(res.Diagnostics, d)
	level := slog.LevelWarn
	if d.Severity == SeverityError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, d.Message, "code", d.Code)
}

func (p *Pipeline) lookup(logger *slog.Logger, res *Result, key, fp string) *cache.Record {
	if p.cfg.Cache == nil {
		return nil
	}
	rec, err := p.cfg.Cache.Load(key)
	if err != nil {
		p.report(logger, res, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeCache,
			Message:  fmt.Sprintf("ignoring cache: %v", err),
			Err:      err,
		})
		return nil
	}
	if rec == nil || rec.Fingerprint != fp {
		return nil
	}
	return rec
}

func (p *Pipeline) store(logger *slog.Logger, res *Result, key string, rec *cache.Record) {
	if p.cfg.Cache == nil {
		return
	}
	if err := p.cfg.Cache.Save(key, rec); err != nil {
		p.report(logger, res, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeCache,
			Message:  fmt.Sprintf("saving cache: %v", err),
			Err:      err,
		})
	}
}

// renderOptions resolves the per-compilation parts of the render options.
func (p *Pipeline) renderOptions(comp Compilation) generator.RenderOptions {
	opts := p.cfg.Render
	if opts.PackageName == "" {
		opts.PackageName = comp.PkgName
		return opts
	}
	opts.HostImportPath = comp.PkgPath
	opts.HostPackageName = comp.PkgName
	return opts
}

// fingerprint digests everything the artifact depends on: the marker, the
// policies, the render options and the collected candidates in order.
func (p *Pipeline) fingerprint(opts generator.RenderOptions, cands []generator.Candidate) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%+v\x00", p.cfg.Marker, p.cfg.OnDuplicate, p.cfg.Order, opts)
	for _, c := range cands {
		fmt.Fprintf(h, "%s\x00%s\x00", c.Name, c.Description)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func cacheKey(comp Compilation, opts generator.RenderOptions) string {
	return strings.Join([]string{comp.Dir, comp.PkgPath, opts.ArtifactName}, "\x00")
}
