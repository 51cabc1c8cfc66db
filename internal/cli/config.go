package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/olydis/openapi3-normalizer/internal/model"
	"github.com/olydis/openapi3-normalizer/internal/output"
)

// Config captures all inputs that influence the model and validate commands
// after merging defaults, config file values, and CLI overrides.
type Config struct {
	Input       string
	Out         string
	Format      string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	Split       bool
	Strict      bool
	List        bool
	Timeout     time.Duration
	Retries     int
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool

	stdout io.Writer
	stderr io.Writer
}

func defaultConfig() Config {
	return Config{
		Format:  string(output.FormatJSON),
		Timeout: 10 * time.Second,
		Retries: 3,
	}
}

// resolveConfig merges defaults, the --config file and explicitly set flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(cmd.Name()); err != nil {
		return nil, err
	}
	cfg.stdout = cmd.OutOrStdout()
	cfg.stderr = cmd.ErrOrStderr()
	return &cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"out", &cfg.Out},
		{"format", &cfg.Format},
	}
	for _, f := range strs {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(value)
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"include-tags", &cfg.IncludeTags},
		{"exclude-tags", &cfg.ExcludeTags},
		{"methods", &cfg.Methods},
		{"paths", &cfg.Paths},
	}
	for _, f := range lists {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetStringSlice(f.name)
		if err != nil {
			return err
		}
		*f.dst = sanitizeList(value)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"split", &cfg.Split},
		{"strict", &cfg.Strict},
		{"list", &cfg.List},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	}
	for _, f := range bools {
		if !flags.Changed(f.name) {
			continue
		}
		value, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = value
	}

	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}
	if flags.Changed("retries") {
		value, err := flags.GetInt("retries")
		if err != nil {
			return err
		}
		cfg.Retries = value
	}
	return nil
}

func (c *Config) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Paths = sanitizeList(c.Paths)
	methods := sanitizeList(c.Methods)
	for i, m := range methods {
		methods[i] = strings.ToLower(m)
	}
	c.Methods = methods
}

func (c *Config) validate(command string) error {
	if c.Input == "" {
		return newUsageError(fmt.Sprintf("%s: --input is required (set via flag or config file)", command))
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return newUsageError(fmt.Sprintf("%s: unsupported --format %q (allowed: json, yaml)", command, c.Format))
	}
	for _, m := range c.Methods {
		if !slices.Contains(model.Methods, model.HTTPMethod(m)) {
			return newUsageError(fmt.Sprintf("%s: unknown HTTP method %q", command, m))
		}
	}
	for _, p := range c.Paths {
		if _, err := regexp.Compile(p); err != nil {
			return newUsageError(fmt.Sprintf("%s: invalid --paths pattern %q: %v", command, p, err))
		}
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("%s: include/exclude tags overlap: %s", command, strings.Join(overlap, ", ")))
	}
	// Output settings only matter to the model command.
	if command == "model" && c.Out == "" && (c.DryRun || c.Split) {
		return newUsageError(fmt.Sprintf("%s: --dry-run and --split need --out", command))
	}
	if c.Timeout < 0 {
		return newUsageError(fmt.Sprintf("%s: --timeout must not be negative", command))
	}
	if c.Retries < 0 {
		return newUsageError(fmt.Sprintf("%s: --retries must not be negative", command))
	}
	return nil
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		if err := applyConfigField(cfg, normalizeKey(key), value); err != nil {
			if errors.Is(err, errUnknownField) {
				return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
			}
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}
	return nil
}

var errUnknownField = errors.New("unknown field")

func applyConfigField(cfg *Config, key string, value any) error {
	var err error
	switch key {
	case "input":
		cfg.Input, err = valueAsString(value)
	case "out":
		cfg.Out, err = valueAsString(value)
	case "format":
		cfg.Format, err = valueAsString(value)
	case "includetags":
		cfg.IncludeTags, err = valueAsStringSlice(value)
	case "excludetags":
		cfg.ExcludeTags, err = valueAsStringSlice(value)
	case "methods":
		cfg.Methods, err = valueAsStringSlice(value)
	case "paths":
		cfg.Paths, err = valueAsStringSlice(value)
	case "split":
		cfg.Split, err = valueAsBool(value)
	case "strict":
		cfg.Strict, err = valueAsBool(value)
	case "list":
		cfg.List, err = valueAsBool(value)
	case "timeout":
		cfg.Timeout, err = valueAsDuration(value)
	case "retries":
		cfg.Retries, err = valueAsInt(value)
	case "dryrun":
		cfg.DryRun, err = valueAsBool(value)
	case "force":
		cfg.Force, err = valueAsBool(value)
	case "verbose":
		cfg.Verbose, err = valueAsBool(value)
	default:
		return errUnknownField
	}
	return err
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings ("5s") or whole seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
