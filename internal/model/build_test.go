package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstore = `
openapi: 3.0.0
info:
  title: Petstore
  version: "1.0.0"
  license:
    name: MIT
servers:
  - url: https://{region}.example.com/v1
    variables:
      region:
        default: eu
        enum: [eu, us]
security:
  - apiKey: []
  - petAuth: ["read:pets"]
tags:
  - name: pets
    description: Everything about pets
paths:
  x-generated: true
  /pets:
    summary: Pets collection
    description: Path level description
    parameters:
      - $ref: '#/components/parameters/Limit'
    get:
      operationId: listPets
      tags: [pets]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
        default:
          $ref: '#/components/responses/Error'
    post:
      summary: Create a pet
      tags: [pets, admin]
      security: []
      parameters:
        - name: limit
          in: query
          description: operation level
          schema:
            type: integer
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
  /pets/{id}:
    servers:
      - url: /internal
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: integer
    get:
      deprecated: true
      tags: [audit]
      externalDocs:
        url: https://docs.example.com/pets
      responses:
        2XX:
          description: found
    delete:
      servers:
        - url: /admin
      responses:
        "204":
          description: gone
components:
  parameters:
    Limit:
      name: limit
      in: query
      schema:
        type: integer
        maximum: 100
  responses:
    Error:
      description: error
      content:
        application/json:
          schema:
            type: object
            properties:
              message:
                type: string
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
  securitySchemes:
    apiKey:
      type: apiKey
      in: header
      name: X-API-Key
    petAuth:
      type: oauth2
      flows:
        implicit:
          authorizationUrl: https://auth.example.com
          scopes:
            "read:pets": read your pets
`

func TestBuild_Petstore(t *testing.T) {
	t.Parallel()
	m := mustBuild(t, petstore)

	assert.Equal(t, "Petstore", m.Info.Title)
	require.NotNil(t, m.Info.License)
	assert.Equal(t, "MIT", m.Info.License.Name)

	var order []string
	for _, method := range m.Methods {
		order = append(order, string(method.Method)+" "+method.Path.String())
	}
	assert.Equal(t, []string{"get /pets", "post /pets", "get /pets/{id}", "delete /pets/{id}"}, order)

	list := findMethod(t, m, GET, "/pets")
	assert.Equal(t, "listPets", list.OperationID)
	assert.Equal(t, "Pets collection", list.Summary)
	assert.Equal(t, "Path level description", list.Description)
	assert.Equal(t, []string{"200", "XXX"}, statuses(list.Responses))
	assert.Equal(t, "error", list.Responses[1].Description)
	require.Len(t, list.Parameters, 1)
	assert.Equal(t, 100.0, *list.Parameters[0].Content[""].Schema.Number.Maximum)
	items := list.Responses[0].Content["application/json"].Schema.Array.Items
	assert.Equal(t, "#/components/schemas/Pet", items.Origin)

	require.Len(t, list.Servers, 1)
	assert.Equal(t, "https://{region}.example.com/v1", list.Servers[0].URL.String())
	assert.Equal(t, []string{"eu", "us"}, list.Servers[0].Variables["region"].Enum)

	require.Len(t, list.Security, 2)
	assert.Equal(t, "apiKey", list.Security[0][0].Scheme.Name)
	assert.Equal(t, []string{}, list.Security[0][0].Scopes)
	assert.Equal(t, "petAuth", list.Security[1][0].Scheme.Name)
	assert.Equal(t, []string{"read:pets"}, list.Security[1][0].Scopes)
	assert.Equal(t, "read your pets", list.Security[1][0].Scheme.Flows.Implicit.Scopes["read:pets"])

	create := findMethod(t, m, POST, "/pets")
	assert.Equal(t, "Create a pet", create.Summary)
	assert.NotNil(t, create.Security)
	assert.Empty(t, create.Security)
	require.Len(t, create.Parameters, 1)
	assert.Equal(t, "operation level", create.Parameters[0].Description)
	require.NotNil(t, create.RequestBody)
	assert.True(t, create.RequestBody.Required)
	assert.True(t, create.RequestBody.Content["application/json"].Schema.HasProperty("name"))

	byID := findMethod(t, m, GET, "/pets/{id}")
	assert.True(t, byID.Deprecated)
	assert.Equal(t, "https://docs.example.com/pets", byID.ExternalDocs.URL)
	assert.Equal(t, "/internal", byID.Servers[0].URL.String())
	assert.Len(t, byID.Security, 2)
	assert.Equal(t, []string{"id"}, byID.Path.Params())

	del := findMethod(t, m, DELETE, "/pets/{id}")
	assert.False(t, del.Deprecated)
	assert.Equal(t, "/admin", del.Servers[0].URL.String())
	assert.Nil(t, del.RequestBody)

	var tags []string
	for _, tag := range m.Tags {
		tags = append(tags, tag.Name)
	}
	assert.Equal(t, []string{"pets", "admin", "audit"}, tags)
	assert.Equal(t, "Everything about pets", m.Tags[0].Description)
}

func TestBuild_VersionMismatch(t *testing.T) {
	t.Parallel()
	for _, version := range []string{"3.0.1", "3.1.0", "2.0"} {
		_, err := buildYAML(t, "openapi: '"+version+"'\ninfo: {title: x, version: '1'}\npaths: {}")
		require.Error(t, err, version)
		assert.True(t, errors.Is(err, ErrVersion), version)
	}

	_, err := Build(map[string]any{"info": map[string]any{}})
	assert.True(t, errors.Is(err, ErrVersion))
}

func TestBuild_PathParameterCrossCheck(t *testing.T) {
	t.Parallel()
	const missing = `
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /pets/{id}:
    get:
      responses:
        "200": {description: ok}
`
	_, err := buildYAML(t, missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathMismatch))

	const declared = `
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /pets/{id}:
    get:
      parameters:
        - {name: id, in: path, required: true}
      responses:
        "200": {description: ok}
`
	m, err := buildYAML(t, declared)
	require.NoError(t, err)
	require.Len(t, m.Methods, 1)
	require.Len(t, m.Methods[0].Parameters, 1)
	assert.Equal(t, ParameterKey{Name: "id", In: InPath}, m.Methods[0].Parameters[0].Key())

	const notRequired = `
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /pets/{id}:
    get:
      parameters:
        - {name: id, in: path}
      responses:
        "200": {description: ok}
`
	_, err = buildYAML(t, notRequired)
	assert.True(t, errors.Is(err, ErrParameter))
}

func TestBuild_UnresolvableSecurity(t *testing.T) {
	t.Parallel()
	_, err := buildYAML(t, `
openapi: 3.0.0
info: {title: x, version: "1"}
security:
  - missing: []
paths: {}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSecurity))

	_, err = buildYAML(t, `
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /a:
    get:
      security:
        - ghost: [x]
      responses: {}
`)
	assert.True(t, errors.Is(err, ErrSecurity))
}

func TestBuild_SyntheticServer(t *testing.T) {
	t.Parallel()
	for _, servers := range []string{"", "servers: []\n"} {
		m := mustBuild(t, `
openapi: 3.0.0
info: {title: x, version: "1"}
`+servers+`paths:
  /ping:
    get:
      responses: {}
`)
		ping := findMethod(t, m, GET, "/ping")
		require.Len(t, ping.Servers, 1)
		assert.Equal(t, DefaultServer(), ping.Servers[0])
		assert.Empty(t, ping.Responses)
		assert.NotNil(t, ping.Responses)
		assert.Nil(t, ping.Security)
	}
}

func TestBuild_UndeclaredServerVariable(t *testing.T) {
	t.Parallel()
	_, err := buildYAML(t, `
openapi: 3.0.0
info: {title: x, version: "1"}
servers:
  - url: https://{tenant}.example.com
paths: {}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathTemplate))
}

func TestBuild_MalformedPathKey(t *testing.T) {
	t.Parallel()
	_, err := buildYAML(t, `
openapi: 3.0.0
info: {title: x, version: "1"}
paths:
  /pets/{id:
    get:
      responses: {}
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathTemplate))
	assert.True(t, strings.Contains(err.Error(), "#/paths/~1pets~1{id"), err.Error())
}

func TestBuild_NoPaths(t *testing.T) {
	t.Parallel()
	m := mustBuild(t, "openapi: 3.0.0\ninfo: {title: x, version: '1'}")
	assert.NotNil(t, m.Methods)
	assert.Empty(t, m.Methods)
	assert.Empty(t, m.Tags)
}

func TestBuild_StructureErrors(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"paths not object":     "paths: [a]",
		"operation not object": "paths:\n  /a:\n    get: nope",
		"tags not strings":     "paths:\n  /a:\n    get:\n      tags: [1]",
		"summary not string":   "paths:\n  /a:\n    get:\n      summary: [x]",
		"tag without name":     "tags:\n  - description: nameless",
	}
	for name, body := range cases {
		_, err := buildYAML(t, "openapi: 3.0.0\ninfo: {title: x, version: '1'}\n"+body)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrStructure), name)
	}
}

func TestBuild_DoesNotMutateResolvedDocument(t *testing.T) {
	t.Parallel()
	doc := resolveYAML(t, petstore)
	// A second build over the same graph yields the same model.
	first, err := Build(doc)
	require.NoError(t, err)
	second, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
