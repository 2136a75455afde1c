package form

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/clipqa/annotation-service/internal/domain"
)

// ValidationError lists every field that failed, keyed by field id.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Fields))
	for id := range e.Fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + ": " + e.Fields[id]
	}
	return fmt.Sprintf("%s: %s", domain.ErrInvalidAnswer, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidAnswer }

// Validate checks raw against the schema and returns the normalised answer:
// one entry per schema field, holding an int or nil. Keys the schema does not
// know are dropped.
//
// A field is required when Required is set, or when its RequiredWhen gate
// holds. Any value that is present is range checked even when optional.
func (s *Schema) Validate(raw map[string]any) (domain.Answer, error) {
	values := make(map[string]*int, len(s.Fields))
	problems := map[string]string{}

	for _, f := range s.Fields {
		v, present, err := toInt(raw[f.ID])
		switch {
		case err != nil:
			problems[f.ID] = "must be an integer"
		case present && !f.Accepts(v):
			problems[f.ID] = fmt.Sprintf("value %d is not one of the allowed answers", v)
		case present:
			values[f.ID] = &v
		}
	}

	answer := make(domain.Answer, len(s.Fields))
	for _, f := range s.Fields {
		if _, bad := problems[f.ID]; bad {
			continue
		}
		v := values[f.ID]
		if v == nil {
			if s.required(f, values) {
				problems[f.ID] = "is required"
				continue
			}
			answer[f.ID] = nil
			continue
		}
		answer[f.ID] = *v
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	return answer, nil
}

// Missing returns the ids of required fields that raw leaves unset, in
// display order. It ignores malformed values; use Validate for those.
func (s *Schema) Missing(raw map[string]any) []string {
	values := make(map[string]*int, len(s.Fields))
	for _, f := range s.Fields {
		if v, present, err := toInt(raw[f.ID]); err == nil && present {
			values[f.ID] = &v
		}
	}
	var out []string
	for _, f := range s.Fields {
		if values[f.ID] == nil && s.required(f, values) {
			out = append(out, f.ID)
		}
	}
	return out
}

func (s *Schema) required(f Field, values map[string]*int) bool {
	if f.Required {
		return true
	}
	if f.RequiredWhen == nil {
		return false
	}
	gate := values[f.RequiredWhen.Field]
	return gate != nil && *gate == f.RequiredWhen.Equals
}

// toInt accepts the shapes a JSON or form client sends for a number:
// float64 with no fraction, json.Number, ints and numeric strings.
// nil and "" count as absent.
func toInt(v any) (int, bool, error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), true, nil
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, false, err
		}
		return i, true, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, err
		}
		return i, true, nil
	default:
		return 0, false, fmt.Errorf("unsupported type %T", v)
	}
}
