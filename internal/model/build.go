// Package model turns a reference-resolved OpenAPI 3.0.0 document into a
// normalized Model: defaults applied, path/operation overrides merged and
// structural invariants checked.
//
// Build is pure. It reads the decoded document (maps, slices and scalars as
// produced by a YAML or JSON decoder, with every $ref already replaced by
// refs.Resolve) and either returns a complete Model or the first violation as
// an *Error. No partial model is returned.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SupportedVersion is the only `openapi` value Build accepts.
const SupportedVersion = "3.0.0"

type builder struct {
	schemes    map[string]*SecurityScheme
	inProgress map[uintptr]bool
}

func newBuilder() *builder {
	return &builder{
		schemes:    make(map[string]*SecurityScheme),
		inProgress: make(map[uintptr]bool),
	}
}

// defaults carries the document-level settings operations fall back to.
type defaults struct {
	servers  []Server
	security SecurityAlternatives
}

// Build converts a resolved document into a Model.
func Build(doc map[string]any) (*Model, error) {
	if doc == nil {
		return nil, newError(ErrStructure, "#", "nil document")
	}
	root := object{fields: doc, pointer: "#"}

	version, err := root.str("openapi")
	if err != nil {
		return nil, err
	}
	if version != SupportedVersion {
		return nil, newError(ErrVersion, root.at("openapi"), fmt.Sprintf("unsupported OpenAPI version %q (want %s)", version, SupportedVersion))
	}

	b := newBuilder()
	m := &Model{}
	if m.Info, err = parseInfo(root); err != nil {
		return nil, err
	}
	if components, ok, err := root.obj("components"); err != nil {
		return nil, err
	} else if ok {
		if err := b.parseSecuritySchemes(components); err != nil {
			return nil, err
		}
	}

	def := defaults{}
	servers, ok, err := parseServers(root, "servers")
	if err != nil {
		return nil, err
	}
	if !ok {
		servers = []Server{DefaultServer()}
	}
	def.servers = servers
	if def.security, err = b.parseSecurity(root, "security"); err != nil {
		return nil, err
	}

	declared, err := parseTags(root)
	if err != nil {
		return nil, err
	}

	m.Methods = []Method{}
	if paths, ok, err := root.obj("paths"); err != nil {
		return nil, err
	} else if ok {
		for _, template := range paths.entries() {
			item, err := asObject(paths.value(template), paths.at(template))
			if err != nil {
				return nil, err
			}
			methods, err := b.pathItem(template, item, def)
			if err != nil {
				return nil, err
			}
			m.Methods = append(m.Methods, methods...)
		}
	}
	m.Tags = tagCatalog(declared, m.Methods)
	return m, nil
}

func (b *builder) pathItem(template string, item object, def defaults) ([]Method, error) {
	suffix, err := parsePathAt(template, item.pointer)
	if err != nil {
		return nil, err
	}
	if servers, ok, err := parseServers(item, "servers"); err != nil {
		return nil, err
	} else if ok {
		def.servers = servers
	}
	pathParams, err := b.parseParameterList(item, "parameters")
	if err != nil {
		return nil, err
	}
	summary, err := item.str("summary")
	if err != nil {
		return nil, err
	}
	description, err := item.str("description")
	if err != nil {
		return nil, err
	}

	var methods []Method
	for _, verb := range Methods {
		op, ok, err := item.obj(string(verb))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		method, err := b.operation(verb, suffix, op, pathParams, def)
		if err != nil {
			return nil, err
		}
		if method.Summary == "" {
			method.Summary = summary
		}
		if method.Description == "" {
			method.Description = description
		}
		methods = append(methods, method)
	}
	return methods, nil
}

func (b *builder) operation(verb HTTPMethod, suffix Path, op object, pathParams []Parameter, def defaults) (Method, error) {
	m := Method{Method: verb, Path: suffix, Servers: def.servers, Security: def.security}
	var err error

	if servers, ok, err := parseServers(op, "servers"); err != nil {
		return Method{}, err
	} else if ok {
		m.Servers = servers
	}

	opParams, err := b.parseParameterList(op, "parameters")
	if err != nil {
		return Method{}, err
	}
	m.Parameters = MergeParameters(pathParams, opParams)
	if err := checkPathParameters(suffix, m.Parameters, op.pointer); err != nil {
		return Method{}, err
	}

	if rb, ok, err := op.obj("requestBody"); err != nil {
		return Method{}, err
	} else if ok {
		if m.RequestBody, err = b.requestBody(rb); err != nil {
			return Method{}, err
		}
	}

	if op.has("security") {
		if m.Security, err = b.parseSecurity(op, "security"); err != nil {
			return Method{}, err
		}
	}

	m.Responses = []Response{}
	if ro, ok, err := op.obj("responses"); err != nil {
		return Method{}, err
	} else if ok {
		if m.Responses, err = b.parseResponses(ro); err != nil {
			return Method{}, err
		}
	}

	if m.Tags, err = op.strs("tags"); err != nil {
		return Method{}, err
	}
	if m.Summary, err = op.str("summary"); err != nil {
		return Method{}, err
	}
	if m.Description, err = op.str("description"); err != nil {
		return Method{}, err
	}
	if m.ExternalDocs, err = externalDocs(op); err != nil {
		return Method{}, err
	}
	if m.OperationID, err = op.str("operationId"); err != nil {
		return Method{}, err
	}
	if m.Deprecated, err = op.boolean("deprecated"); err != nil {
		return Method{}, err
	}
	return m, nil
}

func (b *builder) requestBody(o object) (*RequestBody, error) {
	rb := &RequestBody{Content: Content{}}
	var err error
	if rb.Description, err = o.str("description"); err != nil {
		return nil, err
	}
	if rb.Required, err = o.boolean("required"); err != nil {
		return nil, err
	}
	if o.has("content") {
		if rb.Content, err = b.parseContent(o.value("content"), o.at("content")); err != nil {
			return nil, err
		}
	}
	return rb, nil
}

func parseInfo(root object) (Info, error) {
	o, ok, err := root.obj("info")
	if err != nil || !ok {
		return Info{}, err
	}
	info := Info{}
	fields := []struct {
		key string
		dst *string
	}{
		{"title", &info.Title},
		{"description", &info.Description},
		{"termsOfService", &info.TermsOfService},
		{"version", &info.Version},
	}
	for _, f := range fields {
		if *f.dst, err = o.str(f.key); err != nil {
			return Info{}, err
		}
	}
	if co, ok, err := o.obj("contact"); err != nil {
		return Info{}, err
	} else if ok {
		c := &Contact{}
		if c.Name, err = co.str("name"); err != nil {
			return Info{}, err
		}
		if c.URL, err = co.str("url"); err != nil {
			return Info{}, err
		}
		if c.Email, err = co.str("email"); err != nil {
			return Info{}, err
		}
		info.Contact = c
	}
	if lo, ok, err := o.obj("license"); err != nil {
		return Info{}, err
	} else if ok {
		l := &License{}
		if l.Name, err = lo.str("name"); err != nil {
			return Info{}, err
		}
		if l.URL, err = lo.str("url"); err != nil {
			return Info{}, err
		}
		info.License = l
	}
	return info, nil
}

func parseTags(root object) ([]Tag, error) {
	l, ok, err := root.list("tags")
	if err != nil || !ok {
		return nil, err
	}
	tags := make([]Tag, 0, len(l))
	for i, item := range l {
		to, err := asObject(item, root.at("tags")+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		t := Tag{}
		if t.Name, err = to.requiredStr("name"); err != nil {
			return nil, err
		}
		if t.Description, err = to.str("description"); err != nil {
			return nil, err
		}
		if t.ExternalDocs, err = externalDocs(to); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// tagCatalog keeps the declared tags in document order and appends tags used
// by operations but never declared, sorted.
func tagCatalog(declared []Tag, methods []Method) []Tag {
	catalog := append([]Tag(nil), declared...)
	known := make(map[string]struct{}, len(declared))
	for _, t := range declared {
		known[t.Name] = struct{}{}
	}
	for _, name := range collectSortedTags(methods) {
		if _, ok := known[name]; !ok {
			catalog = append(catalog, Tag{Name: name})
		}
	}
	return catalog
}

func collectSortedTags(methods []Method) []string {
	set := make(map[string]struct{})
	for _, m := range methods {
		for _, t := range m.Tags {
			if t = strings.TrimSpace(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
