package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath_ConstantOnly(t *testing.T) {
	t.Parallel()
	for _, template := range []string{"/", "/pets", "/pets/mine", "https://api.example.com/v1"} {
		p, err := ParsePath(template)
		require.NoError(t, err, template)
		require.Len(t, p, 1, template)
		assert.Equal(t, PathComponent{Value: template}, p[0])
	}

	p, err := ParsePath("")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestParsePath_RejoinsTemplate(t *testing.T) {
	t.Parallel()
	templates := []string{
		"/pets/{id}",
		"/pets/{id}/photos/{photoId}.{ext}",
		"{scheme}://{host}/api",
		"/{a}{b}",
		"/users/{user_id}/",
	}
	for _, template := range templates {
		p, err := ParsePath(template)
		require.NoError(t, err, template)
		assert.Equal(t, template, p.String())
	}
}

func TestParsePath_Components(t *testing.T) {
	t.Parallel()
	p, err := ParsePath("/pets/{id}/photos/{photoId}")
	require.NoError(t, err)
	assert.Equal(t, Path{
		{Value: "/pets/"},
		{Value: "id", Param: true},
		{Value: "/photos/"},
		{Value: "photoId", Param: true},
	}, p)
	assert.Equal(t, []string{"id", "photoId"}, p.Params())

	// Adjacent placeholders leave no empty constant between them.
	p, err = ParsePath("{a}{b}")
	require.NoError(t, err)
	assert.Equal(t, Path{{Value: "a", Param: true}, {Value: "b", Param: true}}, p)
}

func TestParsePath_Malformed(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"closing first":   "/pets}/{id}",
		"unclosed":        "/pets/{id",
		"double close":    "/pets/{id}}",
		"nested":          "/pets/{{id}}",
		"empty name":      "/pets/{}",
		"empty name tail": "/pets/{}/x",
	}
	for name, template := range cases {
		_, err := ParsePath(template)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrPathTemplate), name)
	}
}

func TestPath_TextRoundTrip(t *testing.T) {
	t.Parallel()
	var p Path
	require.NoError(t, p.UnmarshalText([]byte("/pets/{id}")))
	text, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "/pets/{id}", string(text))

	assert.Error(t, p.UnmarshalText([]byte("/pets/{")))
}

func TestParsePathAt_SetsPointer(t *testing.T) {
	t.Parallel()
	_, err := parsePathAt("/a/{", "#/paths/~1a~1{")
	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "#/paths/~1a~1{", me.Pointer)
}
