package spec

import (
	"sort"
	"strings"
)

// swaggerOperations are the Swagger 2.0 path item keys holding operations.
var swaggerOperations = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true,
}

// rewriteV2Operations repairs Swagger 2.0 operations that openapi2conv
// rejects, editing doc in place:
//   - several body parameters are merged into one object-typed body;
//   - body parameters mixed with formData become formData parameters and the
//     operation consumes multipart/form-data.
//
// It reports whether anything changed.
func rewriteV2Operations(doc map[string]any) bool {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return false
	}
	changed := false
	for _, template := range sortedKeys(paths) {
		item, ok := paths[template].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range sortedKeys(item) {
			if !swaggerOperations[strings.ToLower(key)] {
				continue
			}
			op, ok := item[key].(map[string]any)
			if !ok {
				continue
			}
			if rewriteOperation(op) {
				changed = true
			}
		}
	}
	return changed
}

func rewriteOperation(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}
	bodies, hasForm := 0, false
	for _, p := range params {
		switch strings.ToLower(paramIn(p)) {
		case "body":
			bodies++
		case "formdata":
			hasForm = true
		}
	}
	switch {
	case bodies > 0 && hasForm:
		op["parameters"] = bodiesToFormData(params)
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	case bodies > 1:
		op["parameters"] = mergeBodies(params)
		return true
	default:
		return false
	}
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	return asString(pm["in"])
}

func paramName(pm map[string]any) string {
	if name := asString(pm["name"]); name != "" {
		return name
	}
	return "field"
}

// mergeBodies folds every body parameter into a single body named "body"
// placed first, keeping the other parameters in order.
func mergeBodies(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if !strings.EqualFold(asString(pm["in"]), "body") {
			rest = append(rest, p)
			continue
		}
		name := paramName(pm)
		schema := schemaFromParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	bodySchema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		bodySchema["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": bodySchema}
	return append([]any{merged}, rest...)
}

func bodiesToFormData(params []any) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if strings.EqualFold(asString(pm["in"]), "body") {
			out = append(out, formDataFromBody(pm))
			continue
		}
		out = append(out, pm)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// schemaFromParam returns the body schema, or synthesizes one from the
// parameter's own type, items and format.
func schemaFromParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	typ := asString(pm["type"])
	if typ == "" {
		return nil
	}
	out := map[string]any{"type": typ}
	if items, ok := pm["items"].(map[string]any); ok {
		out["items"] = items
	}
	if f := asString(pm["format"]); f != "" {
		out["format"] = f
	}
	return out
}

// formDataFromBody converts a body parameter into a formData parameter.
// Referenced or untyped schemas degrade to string.
func formDataFromBody(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": paramName(pm)}
	if desc := asString(pm["description"]); desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	source := pm
	if sch, ok := pm["schema"].(map[string]any); ok {
		source = sch
	}
	typ := asString(source["type"])
	if typ == "" {
		typ = "string"
	}
	out["type"] = typ
	if items, ok := source["items"].(map[string]any); ok {
		out["items"] = items
	}
	if f := asString(source["format"]); f != "" {
		out["format"] = f
	}
	return out
}
