// Package output serializes a normalized model to JSON or YAML files.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/olydis/openapi3-normalizer/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("output: unknown format %q (want json or yaml)", s)
	}
}

// Options controls how Emit renders a model.
type Options struct {
	OutDir string // required; target directory
	Format Format
	// Split additionally writes one file per method under methods/.
	Split  bool
	Force  bool // overwrite into a non-empty directory
	DryRun bool // don't write, only plan
}

// PlannedFile describes a file Emit intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

type Result struct {
	Planned []PlannedFile
}

// Encode renders m in the given format.
func Encode(m *model.Model, format Format) ([]byte, error) {
	return encodeValue(m, format)
}

// Write encodes m to w.
func Write(w io.Writer, m *model.Model, format Format) error {
	data, err := Encode(m, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func encodeValue(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("output: unknown format %q", format)
	}
}

// Emit plans model.<ext> (plus methods/<slug>.<ext> with Split) and writes
// the files unless DryRun is set.
func Emit(ctx context.Context, m *model.Model, opts Options) (*Result, error) {
	if m == nil {
		return nil, fmt.Errorf("output: nil model")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output: OutDir is required")
	}
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	ext := "." + string(format)

	files := map[string][]byte{}
	data, err := Encode(m, format)
	if err != nil {
		return nil, err
	}
	files["model"+ext] = data

	if opts.Split {
		for i, name := range methodFileNames(m.Methods) {
			data, err := encodeValue(m.Methods[i], format)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
			files[filepath.Join("methods", name+ext)] = data
		}
	}

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[filepath.FromSlash(rel)]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(ctx, opts.OutDir, rels, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

func writeFiles(ctx context.Context, outDir string, rels []string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("output: directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeAtomic(filepath.Join(abs, filepath.FromSlash(rel)), files[filepath.FromSlash(rel)]); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

// writeAtomic writes via a temp file in the target directory and renames it
// into place.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// methodFileNames derives one unique file stem per method, preferring the
// operation id and falling back to "<method>-<path>".
func methodFileNames(methods []model.Method) []string {
	names := make([]string, len(methods))
	seen := make(map[string]int, len(methods))
	for i, m := range methods {
		base := slug(m.OperationID)
		if base == "" {
			base = slug(string(m.Method) + " " + m.Path.String())
		}
		if base == "" {
			base = string(m.Method)
		}
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%s-%d", base, n+1)
		}
		seen[base]++
		names[i] = name
	}
	return names
}

// slug lowercases s and keeps alphanumerics, turning every other run of
// characters into a single dash.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
