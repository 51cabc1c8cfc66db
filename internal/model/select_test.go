package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selected(m *Model) []string {
	var out []string
	for _, method := range m.Methods {
		out = append(out, string(method.Method)+" "+method.Path.String())
	}
	return out
}

func TestSelect_Filters(t *testing.T) {
	t.Parallel()
	m := mustBuild(t, petstore)

	cases := []struct {
		name string
		opts []SelectOption
		want []string
	}{
		{"none", nil, []string{"get /pets", "post /pets", "get /pets/{id}", "delete /pets/{id}"}},
		{"include", []SelectOption{WithIncludeTags([]string{"pets"})}, []string{"get /pets", "post /pets"}},
		{"exclude", []SelectOption{WithExcludeTags([]string{"admin", " "})}, []string{"get /pets", "get /pets/{id}", "delete /pets/{id}"}},
		{"methods", []SelectOption{WithMethods([]HTTPMethod{"GET"})}, []string{"get /pets", "get /pets/{id}"}},
		{"paths", []SelectOption{WithPathPatterns([]string{`\{id\}$`})}, []string{"get /pets/{id}", "delete /pets/{id}"}},
		{"combined", []SelectOption{
			WithIncludeTags([]string{"pets", "audit"}),
			WithExcludeTags([]string{"admin"}),
			WithMethods([]HTTPMethod{GET}),
		}, []string{"get /pets", "get /pets/{id}"}},
	}
	for _, tc := range cases {
		out, err := Select(m, tc.opts...)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, selected(out), tc.name)
	}
	// The source model keeps every method.
	assert.Len(t, m.Methods, 4)
}

func TestSelect_PrunesTagCatalog(t *testing.T) {
	t.Parallel()
	m := mustBuild(t, petstore)
	out, err := Select(m, WithMethods([]HTTPMethod{DELETE, GET}), WithExcludeTags([]string{"audit"}))
	require.NoError(t, err)
	require.Len(t, out.Tags, 1)
	assert.Equal(t, "pets", out.Tags[0].Name)
	assert.Equal(t, m.Info, out.Info)
}

func TestSelect_Errors(t *testing.T) {
	t.Parallel()
	_, err := Select(nil)
	assert.Error(t, err)

	m := mustBuild(t, petstore)
	_, err = Select(m, WithPathPatterns([]string{"("}))
	assert.ErrorContains(t, err, "invalid path pattern")
}
