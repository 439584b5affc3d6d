package analyzer

import (
	"go/types"

	"github.com/olehluchkiv/descgen/internal/generator"
	"github.com/olehluchkiv/descgen/internal/marker"
	"github.com/olehluchkiv/descgen/internal/pipeline"
)

// MethodElement is a method declaration carrying at least one marker of the
// configured identity.
type MethodElement struct {
	Method     string
	Receiver   string // receiver base type name, without pointer or type parameters
	Signature  string
	Markers    []marker.Marker
	Func       *types.Func
	SourceFile string // relative to the load directory
	Line       int
}

var _ generator.Element = (*MethodElement)(nil)

// Name returns the declared method name.
func (m *MethodElement) Name() string {
	if m == nil {
		return ""
	}
	return m.Method
}

// MarkerArguments returns the arguments of the first marker with identity id.
func (m *MethodElement) MarkerArguments(id marker.Identity) ([]marker.Value, bool) {
	if m == nil {
		return nil, false
	}
	mk, ok := marker.Find(m.Markers, id)
	if !ok {
		return nil, false
	}
	return mk.Args, true
}

// Package is one loaded package with the elements surfaced for it.
type Package struct {
	Compilation pipeline.Compilation
	// Elements holds one entry per marked method in file name order, then
	// source order. Methods whose symbol failed to resolve are nil entries.
	Elements    []generator.Element
	HasHostType bool
}

// Methods returns the resolved elements as concrete values.
func (p *Package) Methods() []*MethodElement {
	var out []*MethodElement
	for _, el := range p.Elements {
		if m, ok := el.(*MethodElement); ok && m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Options controls which declarations are surfaced.
type Options struct {
	Marker            marker.Identity
	Receiver          string // only methods of this receiver type; empty means all
	IncludeUnexported bool
	HostType          string // checked for presence in every package
	SkipFile          string // base name of the generated artifact, never scanned
	BuildTags         []string
}
