// Package generator turns marked method declarations into a generated Go
// file holding a method name -> description table.
//
// The work is split into pure steps: Match inspects one element, Collect runs
// Match over everything the host surfaced, Validate drops and deduplicates
// entries, and Render produces the artifact text.
package generator

import (
	"reflect"
	"strings"

	"github.com/olehluchkiv/descgen/internal/marker"
)

// Element is a method declaration surfaced by the host. Implementations must
// be safe to call on a nil receiver.
type Element interface {
	// Name is the declared method name.
	Name() string
	// MarkerArguments returns the arguments of the first attached marker
	// with the given identity, or false when no such marker is attached.
	MarkerArguments(id marker.Identity) ([]marker.Value, bool)
}

// Match reports the escaped description carried by el's first marker of
// identity id. It returns false for a nil element, a missing marker, or a
// marker without arguments.
func Match(el Element, id marker.Identity) (string, bool) {
	if isNil(el) {
		return "", false
	}
	args, ok := el.MarkerArguments(id)
	if !ok || len(args) == 0 {
		return "", false
	}
	return Escape(args[0].String()), true
}

// Escape prefixes every double quote with a backslash.
func Escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

func isNil(el Element) bool {
	if el == nil {
		return true
	}
	v := reflect.ValueOf(el)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
