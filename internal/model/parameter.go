package model

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// allowedStyles lists the serialization styles OpenAPI permits per location.
var allowedStyles = map[Location][]Style{
	InPath:   {StyleMatrix, StyleLabel, StyleSimple},
	InQuery:  {StyleForm, StyleSpaceDelimited, StylePipeDelimited, StyleDeepObject},
	InHeader: {StyleSimple},
	InCookie: {StyleForm},
}

// ParameterKey identifies a parameter within one list.
type ParameterKey struct {
	Name string
	In   Location
}

func (p Parameter) Key() ParameterKey { return ParameterKey{Name: p.Name, In: p.In} }

func (k ParameterKey) less(o ParameterKey) bool {
	if k.Name != o.Name {
		return k.Name < o.Name
	}
	return k.In < o.In
}

// CheckParameters reports whether every (name, location) pair in params is
// unique.
func CheckParameters(params []Parameter) bool {
	keys := make([]ParameterKey, 0, len(params))
	for _, p := range params {
		keys = append(keys, p.Key())
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	for i := 1; i < len(keys); i++ {
		if keys[i] == keys[i-1] {
			return false
		}
	}
	return true
}

// MergeParameters overlays operation-level parameters onto the path-level
// list. A parameter with a matching key replaces the path-level one in place;
// others are appended.
func MergeParameters(pathLevel, operationLevel []Parameter) []Parameter {
	merged := append([]Parameter(nil), pathLevel...)
	for _, p := range operationLevel {
		replaced := false
		for i := range merged {
			if merged[i].Key() == p.Key() {
				merged[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, p)
		}
	}
	return merged
}

func defaultStyle(in Location) Style {
	if in == InQuery || in == InCookie {
		return StyleForm
	}
	return StyleSimple
}

// parseFormat applies the location defaults: style is form for query and
// cookie values and simple otherwise; explode defaults to true exactly when
// the style is form.
func parseFormat(o object, in Location) (Format, error) {
	style := defaultStyle(in)
	if o.has("style") {
		s, err := o.str("style")
		if err != nil {
			return Format{}, err
		}
		style = Style(s)
	}
	if !slices.Contains(allowedStyles[in], style) {
		return Format{}, newError(ErrParameter, o.at("style"), fmt.Sprintf("style %q is not allowed for %s values", style, in))
	}
	explode := style == StyleForm
	if v, err := o.optBool("explode"); err != nil {
		return Format{}, err
	} else if v != nil {
		explode = *v
	}
	return Format{Style: style, Explode: explode}, nil
}

func (b *builder) parseParameter(v any, pointer string) (Parameter, error) {
	o, err := asObject(v, pointer)
	if err != nil {
		return Parameter{}, err
	}
	name, err := o.requiredStr("name")
	if err != nil {
		return Parameter{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Parameter{}, newError(ErrParameter, o.at("name"), "parameter name is empty")
	}
	in, err := o.requiredStr("in")
	if err != nil {
		return Parameter{}, err
	}
	loc := Location(in)
	if _, ok := allowedStyles[loc]; !ok {
		return Parameter{}, newError(ErrParameter, o.at("in"), fmt.Sprintf("unknown parameter location %q", in))
	}
	return b.parseParameterBase(o, name, loc)
}

// parseParameterBase normalizes the fields parameters share with header
// objects, which get their name and location from the enclosing map.
func (b *builder) parseParameterBase(o object, name string, in Location) (Parameter, error) {
	p := Parameter{Name: name, In: in}
	var err error
	if p.Description, err = o.str("description"); err != nil {
		return Parameter{}, err
	}
	if p.Required, err = o.boolean("required"); err != nil {
		return Parameter{}, err
	}
	if in == InPath && !p.Required {
		return Parameter{}, newError(ErrParameter, o.pointer, fmt.Sprintf("path parameter %q must be required", name))
	}
	if p.Deprecated, err = o.boolean("deprecated"); err != nil {
		return Parameter{}, err
	}
	allowEmpty, err := o.boolean("allowEmptyValue")
	if err != nil {
		return Parameter{}, err
	}
	allowReserved, err := o.boolean("allowReserved")
	if err != nil {
		return Parameter{}, err
	}
	if in == InQuery {
		p.AllowEmptyValue = allowEmpty
		p.AllowReserved = allowReserved
	}
	if p.Format, err = parseFormat(o, in); err != nil {
		return Parameter{}, err
	}
	if p.Content, err = b.parameterContent(o); err != nil {
		return Parameter{}, err
	}
	return p, nil
}

// parameterContent merges an explicit content map with the parameter's own
// schema and examples, which land under the empty media type.
func (b *builder) parameterContent(o object) (Content, error) {
	content := Content{}
	if o.has("content") {
		explicit, err := b.parseContent(o.value("content"), o.at("content"))
		if err != nil {
			return nil, err
		}
		for k, v := range explicit {
			content[k] = v
		}
	}
	if o.has("schema") || o.has("example") || o.has("examples") || !o.has("content") {
		mt, err := b.parseMediaType(o, "")
		if err != nil {
			return nil, err
		}
		content[""] = mt
	}
	return content, nil
}

// parseParameterList reads a parameters array and rejects duplicate keys.
func (b *builder) parseParameterList(o object, key string) ([]Parameter, error) {
	l, ok, err := o.list(key)
	if err != nil || !ok {
		return nil, err
	}
	params := make([]Parameter, 0, len(l))
	for i, item := range l {
		p, err := b.parseParameter(item, o.at(key)+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	if !CheckParameters(params) {
		return nil, newError(ErrParameter, o.at(key), "duplicate parameter (name, location) pair")
	}
	return params, nil
}

// parseHeaders reads a map of header objects as header-location parameters.
// A Content-Type entry is ignored as OpenAPI requires.
func (b *builder) parseHeaders(o object, key string) ([]Parameter, error) {
	h, ok, err := o.obj(key)
	if err != nil || !ok {
		return nil, err
	}
	var headers []Parameter
	for _, name := range h.keys() {
		if strings.EqualFold(name, "Content-Type") {
			continue
		}
		ho, err := asObject(h.value(name), h.at(name))
		if err != nil {
			return nil, err
		}
		p, err := b.parseParameterBase(ho, name, InHeader)
		if err != nil {
			return nil, err
		}
		headers = append(headers, p)
	}
	return headers, nil
}

// checkPathParameters requires the path-location parameter names to match the
// template placeholders exactly.
func checkPathParameters(template Path, params []Parameter, pointer string) error {
	declared := []string{}
	for _, p := range params {
		if p.In == InPath {
			declared = append(declared, p.Name)
		}
	}
	placeholders := append([]string{}, template.Params()...)
	sort.Strings(declared)
	sort.Strings(placeholders)
	if !slices.Equal(declared, placeholders) {
		return newError(ErrPathMismatch, pointer, fmt.Sprintf(
			"path %q has placeholders [%s] but declares path parameters [%s]",
			template.String(), strings.Join(placeholders, ", "), strings.Join(declared, ", ")))
	}
	return nil
}
