package model

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/olydis/openapi3-normalizer/internal/refs"
)

type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeBoolean SchemaType = "boolean"
	TypeNull    SchemaType = "null"
)

// Schema is a normalized schema. Exactly one of String, Number, Object and
// Array is set for the matching Type (Number serves integer and number);
// boolean and null carry no constraints.
//
// A Recursive schema is a back-reference to an enclosing schema with the same
// Origin. It carries only Type and Origin.
type Schema struct {
	Type          SchemaType     `json:"type" yaml:"type"`
	Title         string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Nullable      bool           `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	ReadOnly      bool           `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	WriteOnly     bool           `json:"writeOnly,omitempty" yaml:"writeOnly,omitempty"`
	Deprecated    bool           `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Enum          []any          `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default       any            `json:"default,omitempty" yaml:"default,omitempty"`
	Example       any            `json:"example,omitempty" yaml:"example,omitempty"`
	XML           *XML           `json:"xml,omitempty" yaml:"xml,omitempty"`
	ExternalDocs  *ExternalDocs  `json:"externalDocs,omitempty" yaml:"externalDocs,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	AllOf         []*Schema      `json:"allOf,omitempty" yaml:"allOf,omitempty"`
	OneOf         []*Schema      `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	AnyOf         []*Schema      `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	Not           *Schema        `json:"not,omitempty" yaml:"not,omitempty"`

	// Origin is the pointer of the component this schema was referenced from.
	Origin    string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Recursive bool   `json:"recursive,omitempty" yaml:"recursive,omitempty"`

	String *StringSchema `json:"string,omitempty" yaml:"string,omitempty"`
	Number *NumberSchema `json:"number,omitempty" yaml:"number,omitempty"`
	Object *ObjectSchema `json:"object,omitempty" yaml:"object,omitempty"`
	Array  *ArraySchema  `json:"array,omitempty" yaml:"array,omitempty"`
}

type StringSchema struct {
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

type NumberSchema struct {
	Format           string   `json:"format,omitempty" yaml:"format,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`
}

type ObjectSchema struct {
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
	// AdditionalProperties is nil when no additional properties are allowed
	// or declared.
	AdditionalProperties *Schema `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	MinProperties        *int    `json:"minProperties,omitempty" yaml:"minProperties,omitempty"`
	MaxProperties        *int    `json:"maxProperties,omitempty" yaml:"maxProperties,omitempty"`
}

type ArraySchema struct {
	Items       *Schema `json:"items,omitempty" yaml:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
}

type XML struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Attribute bool   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Wrapped   bool   `json:"wrapped,omitempty" yaml:"wrapped,omitempty"`
}

type Discriminator struct {
	PropertyName string            `json:"propertyName" yaml:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// emptySchema is what an absent or `true` schema normalizes to.
func emptySchema() *Schema {
	return &Schema{Type: TypeObject, Object: &ObjectSchema{}}
}

// HasProperty reports whether an object schema declares the named property.
func (s *Schema) HasProperty(name string) bool {
	if s == nil || s.Object == nil {
		return false
	}
	_, ok := s.Object.Properties[name]
	return ok
}

// DefaultMediaType is the content type a multipart or form encoding uses for
// a property when none is declared.
func DefaultMediaType(s *Schema) string {
	if s == nil {
		return "application/json"
	}
	switch s.Type {
	case TypeString:
		if s.String != nil && s.String.Format == "binary" {
			return "application/octet-stream"
		}
		return "text/plain"
	case TypeInteger, TypeNumber, TypeBoolean, TypeNull:
		return "text/plain"
	case TypeArray:
		if s.Array != nil && s.Array.Items != nil {
			return DefaultMediaType(s.Array.Items)
		}
		return "application/json"
	default:
		return "application/json"
	}
}

func schemaType(o object) (SchemaType, error) {
	if !o.has("type") {
		return TypeObject, nil
	}
	t, err := o.str("type")
	if err != nil {
		return "", err
	}
	switch st := SchemaType(t); st {
	case TypeString, TypeInteger, TypeNumber, TypeObject, TypeArray, TypeBoolean, TypeNull:
		return st, nil
	default:
		return "", newError(ErrSchemaType, o.at("type"), fmt.Sprintf("unknown schema type %q", t))
	}
}

// parseSchema normalizes a schema node. Nodes currently being normalized are
// tracked by identity; meeting one again yields a Recursive back-reference
// instead of descending forever.
func (b *builder) parseSchema(v any, pointer string) (*Schema, error) {
	o, err := asObject(v, pointer)
	if err != nil {
		return nil, err
	}
	typ, err := schemaType(o)
	if err != nil {
		return nil, err
	}

	id := reflect.ValueOf(o.fields).Pointer()
	if b.inProgress[id] {
		origin := refs.Origin(o.fields)
		if origin == "" {
			return nil, newError(ErrStructure, pointer, "cyclic schema without a reference origin")
		}
		return &Schema{Type: typ, Origin: origin, Recursive: true}, nil
	}
	b.inProgress[id] = true
	defer delete(b.inProgress, id)

	s := &Schema{Type: typ, Origin: refs.Origin(o.fields)}
	if err := b.schemaCommon(o, s); err != nil {
		return nil, err
	}

	switch typ {
	case TypeString:
		s.String, err = stringSchema(o)
	case TypeInteger, TypeNumber:
		s.Number, err = numberSchema(o)
	case TypeObject:
		s.Object, err = b.objectSchema(o)
	case TypeArray:
		s.Array, err = b.arraySchema(o)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *builder) schemaCommon(o object, s *Schema) error {
	var err error
	if s.Title, err = o.str("title"); err != nil {
		return err
	}
	if s.Description, err = o.str("description"); err != nil {
		return err
	}
	flags := []struct {
		key string
		dst *bool
	}{
		{"nullable", &s.Nullable},
		{"readOnly", &s.ReadOnly},
		{"writeOnly", &s.WriteOnly},
		{"deprecated", &s.Deprecated},
	}
	for _, f := range flags {
		if *f.dst, err = o.boolean(f.key); err != nil {
			return err
		}
	}
	if o.has("enum") {
		if s.Enum, _, err = o.list("enum"); err != nil {
			return err
		}
	}
	s.Default = o.value("default")
	s.Example = o.value("example")

	if s.ExternalDocs, err = externalDocs(o); err != nil {
		return err
	}
	if x, ok, err := o.obj("xml"); err != nil {
		return err
	} else if ok {
		if s.XML, err = xmlObject(x); err != nil {
			return err
		}
	}
	if d, ok, err := o.obj("discriminator"); err != nil {
		return err
	} else if ok {
		if s.Discriminator, err = discriminator(d); err != nil {
			return err
		}
	}

	if s.AllOf, err = b.schemaList(o, "allOf"); err != nil {
		return err
	}
	if s.OneOf, err = b.schemaList(o, "oneOf"); err != nil {
		return err
	}
	if s.AnyOf, err = b.schemaList(o, "anyOf"); err != nil {
		return err
	}
	if o.has("not") {
		if s.Not, err = b.parseSchema(o.value("not"), o.at("not")); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) schemaList(o object, key string) ([]*Schema, error) {
	l, ok, err := o.list(key)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]*Schema, 0, len(l))
	for i, item := range l {
		s, err := b.parseSchema(item, o.at(key)+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func stringSchema(o object) (*StringSchema, error) {
	s := &StringSchema{}
	var err error
	if s.Format, err = o.str("format"); err != nil {
		return nil, err
	}
	if s.Pattern, err = o.str("pattern"); err != nil {
		return nil, err
	}
	if s.MinLength, err = o.integer("minLength"); err != nil {
		return nil, err
	}
	if s.MaxLength, err = o.integer("maxLength"); err != nil {
		return nil, err
	}
	return s, nil
}

func numberSchema(o object) (*NumberSchema, error) {
	n := &NumberSchema{}
	var err error
	if n.Format, err = o.str("format"); err != nil {
		return nil, err
	}
	if n.Minimum, err = o.number("minimum"); err != nil {
		return nil, err
	}
	if n.Maximum, err = o.number("maximum"); err != nil {
		return nil, err
	}
	if n.ExclusiveMinimum, err = o.boolean("exclusiveMinimum"); err != nil {
		return nil, err
	}
	if n.ExclusiveMaximum, err = o.boolean("exclusiveMaximum"); err != nil {
		return nil, err
	}
	if n.MultipleOf, err = o.number("multipleOf"); err != nil {
		return nil, err
	}
	return n, nil
}

func (b *builder) objectSchema(o object) (*ObjectSchema, error) {
	obj := &ObjectSchema{}
	var err error
	if props, ok, err := o.obj("properties"); err != nil {
		return nil, err
	} else if ok {
		obj.Properties = make(map[string]*Schema, len(props.fields))
		for _, name := range props.keys() {
			if obj.Properties[name], err = b.parseSchema(props.value(name), props.at(name)); err != nil {
				return nil, err
			}
		}
	}
	if obj.Required, err = o.strs("required"); err != nil {
		return nil, err
	}
	switch ap := o.value("additionalProperties").(type) {
	case nil:
	case bool:
		if ap {
			obj.AdditionalProperties = emptySchema()
		}
	default:
		if obj.AdditionalProperties, err = b.parseSchema(ap, o.at("additionalProperties")); err != nil {
			return nil, err
		}
	}
	if obj.MinProperties, err = o.integer("minProperties"); err != nil {
		return nil, err
	}
	if obj.MaxProperties, err = o.integer("maxProperties"); err != nil {
		return nil, err
	}
	return obj, nil
}

func (b *builder) arraySchema(o object) (*ArraySchema, error) {
	a := &ArraySchema{}
	var err error
	if o.has("items") {
		if a.Items, err = b.parseSchema(o.value("items"), o.at("items")); err != nil {
			return nil, err
		}
	}
	if a.MinItems, err = o.integer("minItems"); err != nil {
		return nil, err
	}
	if a.MaxItems, err = o.integer("maxItems"); err != nil {
		return nil, err
	}
	if a.UniqueItems, err = o.boolean("uniqueItems"); err != nil {
		return nil, err
	}
	return a, nil
}

func xmlObject(o object) (*XML, error) {
	x := &XML{}
	var err error
	if x.Name, err = o.str("name"); err != nil {
		return nil, err
	}
	if x.Namespace, err = o.str("namespace"); err != nil {
		return nil, err
	}
	if x.Prefix, err = o.str("prefix"); err != nil {
		return nil, err
	}
	if x.Attribute, err = o.boolean("attribute"); err != nil {
		return nil, err
	}
	if x.Wrapped, err = o.boolean("wrapped"); err != nil {
		return nil, err
	}
	return x, nil
}

func discriminator(o object) (*Discriminator, error) {
	name, err := o.requiredStr("propertyName")
	if err != nil {
		return nil, err
	}
	d := &Discriminator{PropertyName: name}
	if m, ok, err := o.obj("mapping"); err != nil {
		return nil, err
	} else if ok {
		d.Mapping = make(map[string]string, len(m.fields))
		for _, k := range m.keys() {
			if d.Mapping[k], err = m.str(k); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}
