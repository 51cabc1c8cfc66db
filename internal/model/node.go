package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// object is a decoded document object together with its location, so every
// accessor can report where a malformed value sits.
type object struct {
	fields  map[string]any
	pointer string
}

func asObject(v any, pointer string) (object, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return object{}, newError(ErrStructure, pointer, fmt.Sprintf("expected an object, got %s", kindOf(v)))
	}
	return object{fields: m, pointer: pointer}, nil
}

func (o object) at(key string) string {
	return o.pointer + "/" + jsonpointer.Escape(key)
}

func (o object) has(key string) bool {
	v, ok := o.fields[key]
	return ok && v != nil
}

func (o object) value(key string) any { return o.fields[key] }

func (o object) str(key string) (string, error) {
	v := o.fields[key]
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", newError(ErrStructure, o.at(key), fmt.Sprintf("expected a string, got %s", kindOf(v)))
	}
	return s, nil
}

func (o object) requiredStr(key string) (string, error) {
	if !o.has(key) {
		return "", newError(ErrStructure, o.pointer, fmt.Sprintf("missing required field %q", key))
	}
	return o.str(key)
}

func (o object) boolean(key string) (bool, error) {
	v := o.fields[key]
	if v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, newError(ErrStructure, o.at(key), fmt.Sprintf("expected a boolean, got %s", kindOf(v)))
	}
	return b, nil
}

// optBool returns nil when the field is absent.
func (o object) optBool(key string) (*bool, error) {
	if !o.has(key) {
		return nil, nil
	}
	b, err := o.boolean(key)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (o object) obj(key string) (object, bool, error) {
	if !o.has(key) {
		return object{}, false, nil
	}
	child, err := asObject(o.fields[key], o.at(key))
	if err != nil {
		return object{}, false, err
	}
	return child, true, nil
}

func (o object) list(key string) ([]any, bool, error) {
	v := o.fields[key]
	if v == nil {
		return nil, false, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, false, newError(ErrStructure, o.at(key), fmt.Sprintf("expected an array, got %s", kindOf(v)))
	}
	return l, true, nil
}

func (o object) strs(key string) ([]string, error) {
	l, ok, err := o.list(key)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]string, 0, len(l))
	for i, item := range l {
		s, ok := item.(string)
		if !ok {
			return nil, newError(ErrStructure, fmt.Sprintf("%s/%d", o.at(key), i), fmt.Sprintf("expected a string, got %s", kindOf(item)))
		}
		out = append(out, s)
	}
	return out, nil
}

func (o object) number(key string) (*float64, error) {
	v := o.fields[key]
	if v == nil {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, newError(ErrStructure, o.at(key), fmt.Sprintf("expected a number, got %s", kindOf(v)))
	}
	return &f, nil
}

func (o object) integer(key string) (*int, error) {
	f, err := o.number(key)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) || *f < 0 {
		return nil, newError(ErrStructure, o.at(key), fmt.Sprintf("expected a non-negative integer, got %v", *f))
	}
	n := int(*f)
	return &n, nil
}

// keys returns every key in sorted order.
func (o object) keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// entries returns the sorted keys of a map whose keys are names (paths,
// responses), leaving out specification extensions ("x-" prefix), which the
// OpenAPI format allows next to the named entries.
func (o object) entries() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		if isExtension(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isExtension(key string) bool { return strings.HasPrefix(key, "x-") }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func externalDocs(o object) (*ExternalDocs, error) {
	d, ok, err := o.obj("externalDocs")
	if err != nil || !ok {
		return nil, err
	}
	url, err := d.requiredStr("url")
	if err != nil {
		return nil, err
	}
	desc, err := d.str("description")
	if err != nil {
		return nil, err
	}
	return &ExternalDocs{URL: url, Description: desc}, nil
}
