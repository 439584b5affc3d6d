package pipeline

import (
	"fmt"

	"github.com/olehluchkiv/descgen/internal/cache"
	"github.com/olehluchkiv/descgen/internal/generator"
	"github.com/olehluchkiv/descgen/internal/marker"
)

// Compilation identifies the loaded package a run belongs to.
type Compilation struct {
	PkgPath     string
	PkgName     string
	Dir         string
	ModulePath  string
	Fingerprint string // digest over the package's files as loaded
}

// Sink receives the generated artifact of a run.
type Sink interface {
	AddSource(comp Compilation, a *generator.Artifact) error
}

// Cache stores the previous run per compilation. *cache.Store satisfies it.
type Cache interface {
	Load(key string) (*cache.Record, error)
	Save(key string, rec *cache.Record) error
}

// Config holds everything fixed at pipeline construction.
type Config struct {
	Marker      marker.Identity
	OnDuplicate generator.DuplicatePolicy
	Order       generator.Order
	// Render fields left empty fall back to generator.DefaultRenderOptions.
	// An empty PackageName places the artifact in the compilation's package;
	// a non-empty one places it elsewhere, importing the compilation's package.
	Render generator.RenderOptions
	Cache  Cache
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic codes.
const (
	CodeDuplicate         = "D001"
	CodeDuplicateRejected = "D002"
	CodeRender            = "D003"
	CodeSink              = "D004"
	CodeInternal          = "D005"
	CodeCache             = "D006"
)

// Diagnostic is a problem found during a run. None of them abort the host.
type Diagnostic struct {
	Severity Severity
	Code     string
	Package  string
	Message  string
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s: %s", d.Code, d.Severity, d.Package, d.Message)
}

// Result is the outcome of one run.
type Result struct {
	Package string
	// Artifact is nil when nothing was emitted.
	Artifact    *generator.Artifact
	Entries     generator.EntrySet
	Diagnostics []Diagnostic
	// Cached is true when the previous run's artifact was reused.
	Cached bool
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
