package generator

import (
	"fmt"
	"sort"
	"strings"
)

// DuplicatePolicy decides what happens when two candidates share a name.
type DuplicatePolicy int

const (
	// KeepLast keeps the position of the first occurrence and the
	// description of the last one.
	KeepLast DuplicatePolicy = iota
	// KeepFirst ignores every repeat.
	KeepFirst
	// Reject fails validation with a *DuplicateQualifierError.
	Reject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case KeepLast:
		return "keep-last"
	case KeepFirst:
		return "keep-first"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy accepts the names printed by DuplicatePolicy.String.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "keep-last", "last":
		return KeepLast, nil
	case "keep-first", "first":
		return KeepFirst, nil
	case "reject":
		return Reject, nil
	default:
		return KeepLast, fmt.Errorf("unknown duplicate policy: %s (valid: keep-last, keep-first, reject)", s)
	}
}

// Order decides how entries are arranged in the rendered table.
type Order int

const (
	// OrderSorted sorts entries by qualifier.
	OrderSorted Order = iota
	// OrderDeclaration keeps the order in which the host enumerated them.
	OrderDeclaration
)

func (o Order) String() string {
	switch o {
	case OrderSorted:
		return "sorted"
	case OrderDeclaration:
		return "declaration"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder accepts the names printed by Order.String.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "sorted":
		return OrderSorted, nil
	case "declaration":
		return OrderDeclaration, nil
	default:
		return OrderSorted, fmt.Errorf("unknown order: %s (valid: sorted, declaration)", s)
	}
}

// Entry is a validated qualifier/description pair. Description is escaped
// and never empty.
type Entry struct {
	Qualifier   string
	Description string
}

// EntrySet is the ordered, duplicate free result of Validate.
type EntrySet []Entry

// Duplicate records a qualifier seen more than once and every description
// it carried, in encounter order.
type Duplicate struct {
	Qualifier    string
	Descriptions []string
}

// ValidateOptions controls Validate.
type ValidateOptions struct {
	OnDuplicate DuplicatePolicy
	Order       Order
}

// Validate drops candidates with an empty description and resolves repeated
// names according to opts.OnDuplicate. Duplicates are reported regardless of
// the policy; with Reject they are also returned as an error and the set is
// empty.
func Validate(cands []Candidate, opts ValidateOptions) (EntrySet, []Duplicate, error) {
	var set EntrySet
	index := make(map[string]int)
	seen := make(map[string][]string)
	var dupOrder []string

	for _, c := range cands {
		if c.Description == "" {
			continue
		}
		prev, exists := seen[c.Name]
		seen[c.Name] = append(prev, c.Description)
		if !exists {
			index[c.Name] = len(set)
			set = append(set, Entry{Qualifier: c.Name, Description: c.Description})
			continue
		}
		if len(prev) == 1 {
			dupOrder = append(dupOrder, c.Name)
		}
		if opts.OnDuplicate == KeepLast {
			set[index[c.Name]].Description = c.Description
		}
	}

	dups := make([]Duplicate, 0, len(dupOrder))
	for _, name := range dupOrder {
		dups = append(dups, Duplicate{Qualifier: name, Descriptions: seen[name]})
	}

	if opts.OnDuplicate == Reject && len(dups) > 0 {
		return nil, dups, &DuplicateQualifierError{Duplicates: dups}
	}

	if opts.Order == OrderSorted {
		sort.SliceStable(set, func(i, j int) bool {
			return set[i].Qualifier < set[j].Qualifier
		})
	}
	if len(dups) == 0 {
		dups = nil
	}
	return set, dups, nil
}
