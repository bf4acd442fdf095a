// Package query implements case-insensitive substring search over contacts.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jeanpaul/phonebook/internal/contact"
)

// DefaultFields are searched when no fields are configured. The id is not
// searchable by default.
var DefaultFields = []string{contact.FieldName, contact.FieldNumber}

// Engine matches a query against a fixed set of contact fields.
type Engine struct {
	fields []string
}

// NewEngine returns an engine searching the given fields, or DefaultFields
// when none are given.
func NewEngine(fields ...string) (*Engine, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	for _, f := range fields {
		if !slices.Contains(contact.Fields, f) {
			return nil, fmt.Errorf("unknown search field %q (must be one of %s)", f, strings.Join(contact.Fields, ", "))
		}
	}
	return &Engine{fields: slices.Clone(fields)}, nil
}

// Fields returns the searchable field names.
func (e *Engine) Fields() []string { return slices.Clone(e.fields) }

// Find returns the contacts whose searchable fields contain query,
// ignoring case, in collection order. The query is expected to be trimmed
// and non-empty.
func (e *Engine) Find(contacts []contact.Contact, query string) []contact.Contact {
	needle := strings.ToLower(query)
	var found []contact.Contact
	for _, c := range contacts {
		if e.matches(c, needle) {
			found = append(found, c)
		}
	}
	return found
}

func (e *Engine) matches(c contact.Contact, needle string) bool {
	for _, f := range e.fields {
		v, _ := c.Field(f)
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
