package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureModelConfig runs the root command with args and returns the config
// the model runner would have received.
func captureModelConfig(t *testing.T, args ...string) *Config {
	t.Helper()
	var captured *Config
	modelRunner = func(ctx context.Context, cfg *Config) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { modelRunner = runModel })

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	require.NotNil(t, captured, "expected config to be captured")
	return captured
}

func TestConfigFromFlags(t *testing.T) {
	cfg := captureModelConfig(t,
		"--verbose",
		"model",
		"--input", "spec.yaml",
		"--out", "./build",
		"--format", "YAML",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--methods", "GET,post",
		"--paths", "^/pets",
		"--split",
		"--strict",
		"--timeout", "3s",
		"--retries", "1",
		"--dry-run",
		"--force",
	)

	assert.Equal(t, "spec.yaml", cfg.Input)
	assert.Equal(t, "./build", cfg.Out)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, []string{"foo", "bar"}, cfg.IncludeTags)
	assert.Equal(t, []string{"baz"}, cfg.ExcludeTags)
	assert.Equal(t, []string{"get", "post"}, cfg.Methods)
	assert.Equal(t, []string{"^/pets"}, cfg.Paths)
	assert.True(t, cfg.Split)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Retries)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
}

func TestConfigDefaults(t *testing.T) {
	cfg := captureModelConfig(t, "model", "--input", "spec.yaml")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.Empty(t, cfg.Out)
	assert.False(t, cfg.Strict)
}

func TestConfigPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
format: yaml
includeTags:
  - cfgFoo
excludeTags: cfgBar
methods: [get]
timeout: 5s
retries: 7
dry-run: true
force: false
verbose: true
`) + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg := captureModelConfig(t,
		"--config", configPath,
		"model",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--retries", "0",
		"--dry-run=false",
		"--force",
	)

	assert.Equal(t, "flag-spec.yaml", cfg.Input)
	assert.Equal(t, "from-config", cfg.Out)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, []string{"flagTag"}, cfg.IncludeTags)
	assert.Equal(t, []string{"cfgBar"}, cfg.ExcludeTags)
	assert.Equal(t, []string{"get"}, cfg.Methods)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.Retries)
	assert.False(t, cfg.DryRun, "expected dry-run false after flag override")
	assert.True(t, cfg.Force, "expected force true after flag override")
	assert.True(t, cfg.Verbose, "expected verbose true from config file")
	assert.Equal(t, configPath, cfg.ConfigPath)
}

func TestConfigUnknownKey(t *testing.T) {
	t.Parallel()
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("lang: go\n"), 0o600))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", configPath, "model", "--input", "spec.yaml"})

	err := root.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
	assert.Contains(t, err.Error(), "unknown field")
}

func TestConfigFieldTypeError(t *testing.T) {
	t.Parallel()
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("retries: many\n"), 0o600))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", configPath, "model", "--input", "spec.yaml"})

	err := root.Execute()
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), `config field "retries"`)
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"model"}, "--input is required"},
		{"format", []string{"model", "--input", "a.yaml", "--format", "xml"}, "unsupported --format"},
		{"method", []string{"model", "--input", "a.yaml", "--methods", "fetch"}, "unknown HTTP method"},
		{"pattern", []string{"model", "--input", "a.yaml", "--paths", "("}, "invalid --paths pattern"},
		{"overlap", []string{"model", "--input", "a.yaml", "--include-tags", "a,b", "--exclude-tags", "b"}, "overlap: b"},
		{"dry-run without out", []string{"model", "--input", "a.yaml", "--dry-run"}, "need --out"},
		{"split without out", []string{"model", "--input", "a.yaml", "--split"}, "need --out"},
		{"negative retries", []string{"model", "--input", "a.yaml", "--retries=-1"}, "--retries"},
		{"validate missing input", []string{"validate"}, "validate: --input is required"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			require.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValueConversions(t *testing.T) {
	t.Parallel()

	b, err := valueAsBool("Yes")
	require.NoError(t, err)
	assert.True(t, b)
	_, err = valueAsBool("maybe")
	assert.Error(t, err)

	list, err := valueAsStringSlice(" a, ,b ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)
	_, err = valueAsStringSlice([]any{"a", 1})
	assert.Error(t, err)

	d, err := valueAsDuration(2)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	d, err = valueAsDuration("250ms")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	assert.Equal(t, "includetags", normalizeKey(" Include_Tags "))
	assert.Equal(t, []string{"b"}, intersect([]string{"a", "b"}, []string{"b", "c"}))
	assert.Nil(t, sanitizeList([]string{" ", ""}))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	quiet := newLogger(&buf, false)
	quiet.Info("hidden")
	quiet.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	newLogger(&buf, true).Debug("details", "count", 2)
	assert.Contains(t, buf.String(), "count=2")
}
