package filter

import (
	"encoding/json"
	"sort"
	"strings"
)

// Filters maps a keyword field name to the exact value it must hold.
type Filters map[string]string

// Term is a single exact-match constraint.
type Term struct {
	field string
	value string
}

// NewTerm creates an exact-match constraint.
func NewTerm(field, value string) Term {
	return Term{field: field, value: value}
}

// Field returns the constrained field name.
func (t Term) Field() string { return t.field }

// Value returns the required value.
func (t Term) Value() string { return t.value }

// MarshalJSON renders the constraint as {"term": {field: value}}.
func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]string{
		"term": {t.field: t.value},
	})
}

// Encode converts filters into exact-match constraints.
// Entries whose value is blank after trimming are dropped; retained values
// pass through untrimmed. Output is ordered by field name.
func Encode(filters Filters) []Term {
	terms := make([]Term, 0, len(filters))
	for field, value := range filters {
		if strings.TrimSpace(value) == "" {
			continue
		}
		terms = append(terms, Term{field: field, value: value})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].field < terms[j].field })
	return terms
}

// Select returns the entries of values whose key is in allowed.
// Used to pick filter facets out of a wider parameter set.
func Select(values map[string]string, allowed []string) Filters {
	out := make(Filters, len(allowed))
	for _, key := range allowed {
		if v, ok := values[key]; ok {
			out[key] = v
		}
	}
	return out
}
