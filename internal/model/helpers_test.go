package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olydis/openapi3-normalizer/internal/refs"
	"github.com/olydis/openapi3-normalizer/internal/spec"
)

// resolveYAML decodes src and resolves its references.
func resolveYAML(t *testing.T, src string) map[string]any {
	t.Helper()
	doc, err := spec.Decode([]byte(strings.TrimSpace(src)))
	require.NoError(t, err)
	_, err = refs.Resolve(doc)
	require.NoError(t, err)
	return doc
}

func buildYAML(t *testing.T, src string) (*Model, error) {
	t.Helper()
	return Build(resolveYAML(t, src))
}

func mustBuild(t *testing.T, src string) *Model {
	t.Helper()
	m, err := buildYAML(t, src)
	require.NoError(t, err)
	return m
}

// fragment decodes src as a standalone object located at "#/test".
func fragment(t *testing.T, src string) object {
	t.Helper()
	doc := resolveYAML(t, src)
	return object{fields: doc, pointer: "#/test"}
}

func findMethod(t *testing.T, m *Model, verb HTTPMethod, template string) Method {
	t.Helper()
	for _, method := range m.Methods {
		if method.Method == verb && method.Path.String() == template {
			return method
		}
	}
	t.Fatalf("method %s %s not found", verb, template)
	return Method{}
}
