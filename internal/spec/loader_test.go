package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloV3 = `openapi: 3.0.0
info:
  title: Hello
  version: "1.0.0"
paths:
  /hello:
    get:
      responses:
        200:
          description: ok
`

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600))
	return path
}

func requireCode(t *testing.T, err error, codes ...ErrorCode) *SpecError {
	t.Helper()
	require.Error(t, err)
	var se *SpecError
	require.True(t, errors.As(err, &se), "expected SpecError, got %T", err)
	assert.Contains(t, codes, se.Code)
	return se
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	requireCode(t, err, InputError)
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	requireCode(t, err, InputError)
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/spec.yaml")
	requireCode(t, err, InputError)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	se := requireCode(t, err, InputError)
	assert.True(t, errors.Is(se, os.ErrNotExist))
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, "http://127.0.0.1:1/spec.yaml",
		WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	requireCode(t, err, NetworkError)
}

func TestLoad_V3File(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "hello.yaml", helloV3)

	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, doc.Converted)
	assert.Equal(t, path, doc.Location)
	assert.Equal(t, "3.0.0", doc.Raw["openapi"])

	// Integer response keys decode as strings.
	paths := doc.Raw["paths"].(map[string]any)
	get := paths["/hello"].(map[string]any)["get"].(map[string]any)
	assert.Contains(t, get["responses"].(map[string]any), "200")
}

func TestLoad_StripsBOM(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "bom.yaml", "\xef\xbb\xbf"+helloV3)
	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", doc.Raw["openapi"])
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "none.yaml", "info:\n  title: x\n")
	_, err := Load(context.Background(), path)
	requireCode(t, err, ParseError)

	path = writeSpec(t, "list.yaml", "- a\n- b\n")
	_, err = Load(context.Background(), path)
	requireCode(t, err, ParseError)
}

func TestLoad_V3_StrictRejectsInvalidSpec(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "bad.yaml", `openapi: 3.0.0
info:
  title: Bad
  version: "1.0.0"
paths:
  "/pet":
    get:
      responses: {}
`)

	// Lenient loading leaves the checks to the modeler.
	_, err := Load(context.Background(), path)
	require.NoError(t, err)

	_, err = Load(context.Background(), path, WithStrict(true))
	se := requireCode(t, err, ValidationError, ParseError)
	assert.NotEmpty(t, se.Location)
}

func TestLoad_V2_Conversion_Success(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger.yaml", `swagger: 2.0
info:
  title: Sample
  version: "1.0.0"
host: api.example.com
schemes: [https]
basePath: /v1
paths:
  "/hello/{name}":
    get:
      parameters:
        - in: path
          name: name
          required: true
          type: string
      responses:
        "200":
          description: ok
          schema:
            $ref: "#/definitions/Greeting"
definitions:
  Greeting:
    type: object
    properties:
      text:
        type: string
`)

	doc, err := Load(context.Background(), path, WithStrict(true))
	require.NoError(t, err)
	assert.True(t, doc.Converted)
	assert.Equal(t, ConvertedVersion, doc.Raw["openapi"])

	components := doc.Raw["components"].(map[string]any)
	assert.Contains(t, components["schemas"].(map[string]any), "Greeting")
	servers := doc.Raw["servers"].([]any)
	require.Len(t, servers, 1)
	assert.Equal(t, "https://api.example.com/v1", servers[0].(map[string]any)["url"])
}

func TestLoad_V2_Conversion_Failure(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger-bad.yaml", `swagger: "2.0"
paths: {}
`)
	_, err := Load(context.Background(), path, WithStrict(true))
	requireCode(t, err, ConversionError, ValidationError, ParseError)
}

func TestLoad_URL_RetriesTransientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(helloV3))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/openapi.yaml", WithBackoffBase(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, srv.URL+"/openapi.yaml", doc.Location)
}

func TestLoad_URL_ClientErrorIsFinal(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, WithBackoffBase(time.Millisecond))
	se := requireCode(t, err, NetworkError)
	assert.Contains(t, se.Message, "http 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDecode(t *testing.T) {
	t.Parallel()
	doc, err := Decode([]byte(`{"openapi": "3.0.0", "paths": {"/a": {"get": {"responses": {"200": {}}}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", doc["openapi"])

	doc, err = Decode([]byte("codes:\n  404: missing\n  true: ok\nlist:\n  - 1: one\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"404": "missing", "true": "ok"}, doc["codes"])
	assert.Equal(t, []any{map[string]any{"1": "one"}}, doc["list"])

	_, err = Decode([]byte("just a string"))
	assert.Error(t, err)
	_, err = Decode([]byte("a: [unclosed"))
	assert.Error(t, err)
}
