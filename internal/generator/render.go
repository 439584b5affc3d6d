package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"text/template"
)

// Artifact is one generated source file.
type Artifact struct {
	Name    string // file name, e.g. "app_extension_generated.go"
	Content []byte
}

// RenderOptions configures the generated file.
type RenderOptions struct {
	ArtifactName string
	PackageName  string
	// HostImportPath and HostPackageName are set when the generated file
	// lives outside the package declaring HostType.
	HostImportPath  string
	HostPackageName string
	HostType        string
	FuncName        string
	Generator       string
}

// DefaultRenderOptions returns the options used when nothing is overridden.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ArtifactName: "app_extension_generated.go",
		HostType:     "App",
		FuncName:     "ListMethodDescriptions",
		Generator:    "descgen",
	}
}

var artifactTmpl = template.Must(template.New("artifact").Parse(`// Code generated by {{.Generator}}. DO NOT EDIT.

package {{.PackageName}}
{{range .Imports}}
import {{.}}
{{end}}
// {{.FuncName}} returns the descriptions attached to {{.HostType}} methods, keyed by method name.
func {{.FuncName}}(app *{{.HostRef}}) map[string]string {
	return map[string]string{
{{- range .Entries}}
		"{{.Qualifier}}": "{{.Description}}",
{{- end}}
	}
}
`))

type artifactData struct {
	RenderOptions
	Imports []string
	HostRef string
	Entries EntrySet
}

// Render produces the generated file for set. It returns a nil artifact and
// a nil error when set is empty: there is nothing to emit.
func Render(set EntrySet, opts RenderOptions) (*Artifact, error) {
	if len(set) == 0 {
		return nil, nil
	}
	if err := opts.check(); err != nil {
		return nil, err
	}
	for _, e := range set {
		if !token.IsIdentifier(e.Qualifier) {
			return nil, fmt.Errorf("method name %q is not an identifier", e.Qualifier)
		}
		if !embeddable(e.Description) {
			return nil, &UnescapableError{Qualifier: e.Qualifier, Description: Unescape(e.Description)}
		}
	}

	data := artifactData{RenderOptions: opts, HostRef: opts.HostType, Entries: set}
	if opts.HostImportPath != "" {
		data.Imports = []string{opts.HostPackageName + " " + strconv.Quote(opts.HostImportPath)}
		data.HostRef = opts.HostPackageName + "." + opts.HostType
	}

	var buf bytes.Buffer
	if err := artifactTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", opts.ArtifactName, err)
	}
	return &Artifact{Name: opts.ArtifactName, Content: src}, nil
}

func (o RenderOptions) check() error {
	if o.ArtifactName == "" {
		return fmt.Errorf("artifact name is empty")
	}
	if o.Generator == "" {
		return fmt.Errorf("generator name is empty")
	}
	idents := []struct{ what, v string }{
		{"package name", o.PackageName},
		{"host type", o.HostType},
		{"function name", o.FuncName},
	}
	if o.HostImportPath != "" {
		idents = append(idents, struct{ what, v string }{"host package name", o.HostPackageName})
	}
	for _, id := range idents {
		if !token.IsIdentifier(id.v) {
			return fmt.Errorf("%s %q is not an identifier", id.what, id.v)
		}
	}
	return nil
}

// embeddable reports whether the escaped description reads back as the
// original text when wrapped in double quotes.
func embeddable(escaped string) bool {
	s, err := strconv.Unquote(`"` + escaped + `"`)
	return err == nil && s == Unescape(escaped)
}
