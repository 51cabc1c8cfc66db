package model

import (
	"fmt"
	"strings"
)

func (b *builder) parseContent(v any, pointer string) (Content, error) {
	o, err := asObject(v, pointer)
	if err != nil {
		return nil, err
	}
	content := make(Content, len(o.fields))
	for _, mediaType := range o.keys() {
		mo, err := asObject(o.value(mediaType), o.at(mediaType))
		if err != nil {
			return nil, err
		}
		if content[mediaType], err = b.parseMediaType(mo, mediaType); err != nil {
			return nil, err
		}
	}
	return content, nil
}

// isFormMediaType reports whether properties of the media type are encoded
// individually (multipart/* and urlencoded forms).
func isFormMediaType(mediaType string) bool {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0]))
	return strings.HasPrefix(base, "multipart/") || base == "application/x-www-form-urlencoded"
}

// parseMediaType reads schema, example, examples and encoding from o. It is
// also used on parameter objects, which carry the same schema/example fields.
func (b *builder) parseMediaType(o object, mediaType string) (MediaType, error) {
	mt := MediaType{Schema: emptySchema()}
	var err error
	if o.has("schema") {
		if mt.Schema, err = b.parseSchema(o.value("schema"), o.at("schema")); err != nil {
			return MediaType{}, err
		}
	}
	if mt.Examples, err = parseExamples(o); err != nil {
		return MediaType{}, err
	}
	if isFormMediaType(mediaType) && mt.Schema.Type == TypeObject && o.has("encoding") {
		if mt.Encoding, err = b.parseEncodings(o, mt.Schema); err != nil {
			return MediaType{}, err
		}
	}
	return mt, nil
}

// parseExamples stores a single `example` under the empty key next to the
// named `examples`.
func parseExamples(o object) (map[string]*Example, error) {
	var examples map[string]*Example
	if o.has("example") {
		examples = map[string]*Example{"": {Value: o.value("example")}}
	}
	named, ok, err := o.obj("examples")
	if err != nil || !ok {
		return examples, err
	}
	if examples == nil {
		examples = make(map[string]*Example, len(named.fields))
	}
	for _, key := range named.keys() {
		eo, err := asObject(named.value(key), named.at(key))
		if err != nil {
			return nil, err
		}
		ex := &Example{Value: eo.value("value")}
		if ex.Summary, err = eo.str("summary"); err != nil {
			return nil, err
		}
		if ex.Description, err = eo.str("description"); err != nil {
			return nil, err
		}
		if ex.ExternalValue, err = eo.str("externalValue"); err != nil {
			return nil, err
		}
		examples[key] = ex
	}
	return examples, nil
}

func (b *builder) parseEncodings(o object, schema *Schema) (map[string]Encoding, error) {
	eo, _, err := o.obj("encoding")
	if err != nil {
		return nil, err
	}
	encodings := make(map[string]Encoding, len(eo.fields))
	for _, prop := range eo.keys() {
		if !schema.HasProperty(prop) {
			return nil, newError(ErrEncoding, eo.at(prop), fmt.Sprintf("encoding refers to unknown property %q", prop))
		}
		po, err := asObject(eo.value(prop), eo.at(prop))
		if err != nil {
			return nil, err
		}
		if encodings[prop], err = b.parseEncoding(po, schema.Object.Properties[prop]); err != nil {
			return nil, err
		}
	}
	return encodings, nil
}

func (b *builder) parseEncoding(o object, property *Schema) (Encoding, error) {
	enc := Encoding{}
	var err error
	if enc.ContentType, err = o.str("contentType"); err != nil {
		return Encoding{}, err
	}
	if enc.ContentType == "" {
		enc.ContentType = DefaultMediaType(property)
	}
	if enc.Headers, err = b.parseHeaders(o, "headers"); err != nil {
		return Encoding{}, err
	}
	// Encoded properties serialize like query values.
	if enc.Format, err = parseFormat(o, InQuery); err != nil {
		return Encoding{}, err
	}
	if enc.AllowReserved, err = o.boolean("allowReserved"); err != nil {
		return Encoding{}, err
	}
	return enc, nil
}
