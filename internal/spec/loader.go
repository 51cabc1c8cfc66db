package spec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// ConvertedVersion is stamped on documents converted from Swagger 2.0.
const ConvertedVersion = "3.0.0"

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Document is a decoded OpenAPI document graph ready for reference
// resolution.
type Document struct {
	Raw      map[string]any
	Location string
	// Converted is set when the input was Swagger 2.0 and got converted.
	Converted bool
}

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// Strict additionally validates the document with kin-openapi before
	// returning it.
	Strict bool
	Logger *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option  { return func(s *Settings) { s.BackoffBase = d } }
func WithStrict(strict bool) Option           { return func(s *Settings) { s.Strict = strict } }
func WithLogger(l *slog.Logger) Option        { return func(s *Settings) { s.Logger = l } }

// Load reads and decodes an OpenAPI v3 document. Swagger v2.0 input is
// converted to v3 via kin-openapi openapi2conv first.
//
// input may be a filesystem path or an http/https URL. file:// URLs are
// rejected; pass a plain path instead.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked; pass a local path", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, fetchErr := fetchWithRetry(ctx, input, settings)
		if fetchErr != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
		}
		return parse(ctx, raw, input, settings)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, rerr := os.ReadFile(abs)
	if rerr != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, rerr), Location: abs, Cause: rerr}
	}
	return parse(ctx, raw, abs, settings)
}

func parse(ctx context.Context, raw []byte, location string, settings Settings) (*Document, error) {
	doc, err := Decode(raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}
	version, err := detectSpecVersion(doc)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	switch version {
	case 3:
		if settings.Strict {
			if err := validateV3(ctx, bytes.TrimPrefix(raw, utf8BOM)); err != nil {
				return nil, mapValidateOrParseErr(err, location)
			}
		}
		return &Document{Raw: doc, Location: location}, nil
	default:
		doc["swagger"] = "2.0"
		// Repair incompatible v2 constructs to improve conversion success.
		if rewriteV2Operations(doc) {
			settings.Logger.Debug("rewrote incompatible swagger 2.0 operations", "input", location)
		}
		v3doc, err := convertV2ToV3(doc)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		if settings.Strict {
			if err := v3doc.Validate(ctx); err != nil {
				return nil, mapValidateOrParseErr(err, location)
			}
		}
		converted, err := documentFromV3(v3doc)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		return &Document{Raw: converted, Location: location, Converted: true}, nil
	}
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Decode parses YAML or JSON text into a document graph of
// map[string]any, []any and scalars. Mapping keys are always strings, so
// unquoted YAML keys such as 200 become "200".
func Decode(data []byte) (map[string]any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse spec: %w", err)
	}
	doc, ok := stringifyKeys(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse spec: top level must be a mapping, got %T", raw)
	}
	return doc, nil
}

func stringifyKeys(v any) any {
	switch n := v.(type) {
	case map[string]any:
		for k, val := range n {
			n[k] = stringifyKeys(val)
		}
		return n
	case map[any]any:
		m := make(map[string]any, len(n))
		for k, val := range n {
			m[fmt.Sprint(k)] = stringifyKeys(val)
		}
		return m
	case []any:
		for i := range n {
			n[i] = stringifyKeys(n[i])
		}
		return n
	default:
		return v
	}
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectSpecVersion(doc map[string]any) (int, error) {
	if s, ok := doc["openapi"].(string); ok && strings.HasPrefix(strings.TrimSpace(s), "3.") {
		return 3, nil
	}
	// An unquoted `swagger: 2.0` decodes as a number.
	switch v := doc["swagger"].(type) {
	case string:
		if strings.HasPrefix(strings.TrimSpace(v), "2.") {
			return 2, nil
		}
	case float64:
		if v == 2 {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func validateV3(ctx context.Context, raw []byte) error {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return err
	}
	return doc.Validate(ctx)
}

func convertV2ToV3(doc map[string]any) (*openapi3.T, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

// documentFromV3 re-encodes a converted document into a plain graph. The
// converter emits a 3.0.x patch version; it is pinned to ConvertedVersion.
func documentFromV3(doc *openapi3.T) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	out["openapi"] = ConvertedVersion
	return out, nil
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		settings.Logger.Debug("fetch failed, retrying", "url", rawURL, "attempt", i+1, "error", err)
		// Backoff before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is
// transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func mapValidateOrParseErr(err error, location string) error {
	// Try to extract JSON Pointer where available.
	pointer := extractJSONPointer(err)
	code := ValidationError
	// Heuristics: some loader errors are parse errors.
	if strings.Contains(strings.ToLower(err.Error()), "parse") || strings.Contains(strings.ToLower(err.Error()), "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from error message if a pointer literal appears.
	msg := err.Error()
	if m := jsonPtrRe.FindString(msg); m != "" {
		return m
	}
	return ""
}
