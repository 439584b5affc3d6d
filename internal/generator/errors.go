package generator

import (
	"fmt"
	"strings"
)

// DuplicateQualifierError is returned by Validate under the Reject policy.
type DuplicateQualifierError struct {
	Duplicates []Duplicate
}

func (e *DuplicateQualifierError) Error() string {
	names := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		names[i] = fmt.Sprintf("%s (%d times)", d.Qualifier, len(d.Descriptions))
	}
	return "duplicate method names: " + strings.Join(names, ", ")
}

// UnescapableError is returned by Render when a description cannot be
// embedded in a Go string literal unchanged.
type UnescapableError struct {
	Qualifier   string
	Description string
}

func (e *UnescapableError) Error() string {
	return fmt.Sprintf("description of %s cannot be embedded in a string literal: %q", e.Qualifier, e.Description)
}
