// Package form describes the annotation questionnaires and validates submitted
// answers against them.
package form

import (
	"sort"

	"github.com/clipqa/annotation-service/internal/domain"
)

// Kind is how a field is answered in the UI.
type Kind string

const (
	KindRadio Kind = "radio"
	KindScale Kind = "scale"
)

// Option is one selectable value of a radio field.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Condition makes a field required only while another field holds a value.
type Condition struct {
	Field  string `json:"field"`
	Equals int    `json:"equals"`
}

// Field is one question. Radio fields accept the values of Options; scale
// fields accept any integer in [Min, Max].
type Field struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Kind         Kind       `json:"kind"`
	Options      []Option   `json:"options,omitempty"`
	Min          int        `json:"min,omitempty"`
	Max          int        `json:"max,omitempty"`
	Required     bool       `json:"required"`
	RequiredWhen *Condition `json:"required_when,omitempty"`
}

// Accepts reports whether v is a legal answer for the field.
func (f Field) Accepts(v int) bool {
	switch f.Kind {
	case KindScale:
		return v >= f.Min && v <= f.Max
	default:
		for _, o := range f.Options {
			if o.Value == v {
				return true
			}
		}
		return false
	}
}

// Schema is a versioned questionnaire.
type Schema struct {
	Version string  `json:"version"`
	Fields  []Field `json:"fields"`
}

// FieldIDs returns the field ids in display order.
func (s *Schema) FieldIDs() []string {
	ids := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		ids[i] = f.ID
	}
	return ids
}

var registry = map[string]*Schema{}

func register(s *Schema) *Schema {
	registry[s.Version] = s
	return s
}

// Lookup returns a built-in schema by version.
func Lookup(version string) (*Schema, error) {
	s, ok := registry[version]
	if !ok {
		return nil, domain.ErrUnknownSchema
	}
	return s, nil
}

// Versions lists the built-in schema versions.
func Versions() []string {
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
