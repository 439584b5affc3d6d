package marker

import (
	"fmt"
	"go/ast"
	"strconv"
	"strings"
	"unicode"
)

// Parse parses a single comment line into a marker. The leading "//" is
// optional. It returns false when the line is not a marker at all and an
// error when it looks like a marker but is malformed.
func Parse(line string) (Marker, bool, error) {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "//"))
	if !strings.HasPrefix(text, "+") {
		return Marker{}, false, nil
	}
	text = text[1:]

	name, args, hasArgs := strings.Cut(text, "=")
	name = strings.TrimRightFunc(name, unicode.IsSpace)
	if !isMarkerName(name) {
		return Marker{}, false, nil
	}

	m := Marker{Name: name}
	if !hasArgs {
		return m, true, nil
	}

	values, err := parseArguments(args)
	if err != nil {
		return Marker{}, true, fmt.Errorf("marker %s: %w", name, err)
	}
	m.Args = values
	return m, true, nil
}

// ParseGroup returns the well-formed markers of a comment group in source
// order, along with one error per malformed marker line.
func ParseGroup(cg *ast.CommentGroup) ([]Marker, []error) {
	if cg == nil {
		return nil, nil
	}
	var markers []Marker
	var errs []error
	for _, c := range cg.List {
		// Block comments are not scanned for markers.
		if strings.HasPrefix(c.Text, "/*") {
			continue
		}
		m, ok, err := Parse(c.Text)
		if !ok {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.Pos = c.Slash
		markers = append(markers, m)
	}
	return markers, errs
}

// Find returns the first marker with the given identity.
func Find(markers []Marker, id Identity) (Marker, bool) {
	for _, m := range markers {
		if m.Is(id) {
			return m, true
		}
	}
	return Marker{}, false
}

// isMarkerName accepts a letter followed by letters, digits and the
// separators ':', '.', '_' and '-'.
func isMarkerName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || strings.ContainsRune(":._-", r)):
		default:
			return false
		}
	}
	return true
}

// parseArguments splits a comma separated argument list, honoring quoted
// strings, and decodes every argument.
func parseArguments(args string) ([]Value, error) {
	var raw []string
	var quote rune
	escaped := false
	start := 0

	for i, r := range args {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\' && quote == '"':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '`':
			quote = r
		case ',':
			raw = append(raw, args[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c string in %q", quote, args)
	}
	raw = append(raw, args[start:])

	values := make([]Value, 0, len(raw))
	for i, tok := range raw {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("argument %d is empty", i)
		}
		v, err := parseValue(tok)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func parseValue(tok string) (Value, error) {
	switch {
	case tok[0] == '"' || tok[0] == '`':
		s, err := strconv.Unquote(tok)
		if err != nil {
			return Value{}, fmt.Errorf("invalid string literal %s", tok)
		}
		return Value{Kind: KindString, Raw: tok, text: s}, nil
	case tok == "true" || tok == "false":
		return Value{Kind: KindBool, Raw: tok, text: tok}, nil
	}

	if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
		return Value{Kind: KindInt, Raw: tok, text: strconv.FormatInt(n, 10)}, nil
	}
	if isIdent(tok) {
		return Value{Kind: KindIdent, Raw: tok}, nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return Value{Kind: KindFloat, Raw: tok, text: strconv.FormatFloat(f, 'g', -1, 64)}, nil
	}
	return Value{}, fmt.Errorf("cannot parse value %q", tok)
}

// isIdent accepts dotted identifiers such as `http.MethodGet`.
func isIdent(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
				continue
			}
			return false
		}
	}
	return true
}
