package generator

import "github.com/olehluchkiv/descgen/internal/marker"

// Candidate is a (method name, escaped description) pair before validation.
type Candidate struct {
	Name        string
	Description string
}

// Collect runs Match over elements in the order given and keeps every
// element that carries a description.
func Collect(elements []Element, id marker.Identity) []Candidate {
	var out []Candidate
	for _, el := range elements {
		desc, ok := Match(el, id)
		if !ok {
			continue
		}
		out = append(out, Candidate{Name: el.Name(), Description: desc})
	}
	return out
}
