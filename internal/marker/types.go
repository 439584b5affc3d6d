package marker

import (
	"go/token"
	"strconv"
)

// Identity names the kind of marker a consumer is interested in, e.g. "description".
type Identity string

// Kind classifies a marker argument.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindIdent
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindIdent:
		return "ident"
	default:
		return "unknown"
	}
}

// Value is one positional marker argument.
type Value struct {
	Kind Kind
	Raw  string // source text as written in the comment
	text string // decoded form for strings and canonical form for numbers
}

// String returns the string representation of the value: the unquoted text
// of a string literal, the canonical form of a number or bool, or the raw
// text of an identifier.
func (v Value) String() string {
	if v.Kind == KindIdent {
		return v.Raw
	}
	return v.text
}

// StringValue builds a string-kind Value as if it had been written as a quoted literal.
func StringValue(s string) Value {
	return Value{Kind: KindString, Raw: strconv.Quote(s), text: s}
}

// Marker is one parsed marker comment.
type Marker struct {
	Name string
	Args []Value
	Pos  token.Pos // position of the comment line, NoPos if unknown
}

// Is reports whether the marker has the given identity.
func (m Marker) Is(id Identity) bool {
	return m.Name == string(id)
}
