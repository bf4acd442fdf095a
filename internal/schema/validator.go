package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ContactRecord describes one element of the persisted contact array.
// Stored numbers are not digit-checked; only new input is.
var ContactRecord = map[string]any{
	"type":     "object",
	"required": []string{"id", "name", "number"},
	"properties": map[string]any{
		"id":     map[string]any{"type": "integer"},
		"name":   map[string]any{"type": []string{"string", "number"}},
		"number": map[string]any{"type": []string{"string", "number"}},
	},
}

// Validator checks decoded JSON values against JSON schemas.
// Compiled schemas are cached by their JSON form.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks doc, a value produced by encoding/json, against schemaData.
func (v *Validator) Validate(schemaData any, doc any) error {
	s, err := v.compile(schemaData)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed:\n- %s", dumpErrors(errs))
}

// Filter returns the positions of the elements of docs that satisfy
// schemaData, in order.
func (v *Validator) Filter(schemaData any, docs []any) ([]int, error) {
	if _, err := v.compile(schemaData); err != nil {
		return nil, fmt.Errorf("invalid schema definition: %w", err)
	}
	kept := make([]int, 0, len(docs))
	for i, doc := range docs {
		if v.Validate(schemaData, doc) == nil {
			kept = append(kept, i)
		}
	}
	return kept, nil
}

func (v *Validator) compile(schemaData any) (*gojsonschema.Schema, error) {
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, err
	}
	key := string(jsonBytes)

	if val, ok := v.cache.Load(key); ok {
		return val.(*gojsonschema.Schema), nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, s)
	return s, nil
}

// dumpErrors keeps the first three messages.
func dumpErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	truncated := ""
	if len(errs) > 3 {
		truncated = fmt.Sprintf("\n... and %d more", len(errs)-3)
		errs = errs[:3]
	}
	return strings.Join(errs, "\n- ") + truncated
}
