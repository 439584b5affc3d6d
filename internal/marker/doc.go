/*
Package marker parses "marker comments" attached to Go declarations.

A marker is a doc comment line starting with `+`, a name, and an optional
list of positional arguments after `=`:

	// +description="Say hello"
	// +description="Fetch a user",42,true
	// +deprecated

Names may contain colons to namespace them (`+app:description=...`).

# Arguments

Arguments are separated by commas. Commas inside quoted strings do not split.

- Strings: `"value"` or a raw string in backquotes
- Integers: `42`, `-7`, `0x1f`
- Floats: `1.5`
- Booleans: `true`, `false`
- Identifiers: anything else that is a bare word, kept verbatim

A line that starts with `+` but cannot be parsed (for example an unterminated
string) is reported as an error by Parse and skipped by ParseGroup.
*/
package marker
