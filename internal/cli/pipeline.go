package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olydis/openapi3-normalizer/internal/model"
	"github.com/olydis/openapi3-normalizer/internal/refs"
	"github.com/olydis/openapi3-normalizer/internal/spec"
)

type pipelineResult struct {
	Document *spec.Document
	Model    *model.Model
	Refs     int
}

// runPipeline loads cfg.Input, resolves its references in place and builds
// the normalized model.
func runPipeline(ctx context.Context, cfg *Config, logger *slog.Logger) (*pipelineResult, error) {
	doc, err := spec.Load(ctx, cfg.Input,
		spec.WithHTTPTimeout(cfg.Timeout),
		spec.WithMaxRetries(cfg.Retries),
		spec.WithStrict(cfg.Strict),
		spec.WithLogger(logger),
	)
	if err != nil {
		return nil, describeError(err, cfg.Input)
	}
	logger.Debug("loaded document", "location", doc.Location, "converted", doc.Converted)

	count, err := refs.Resolve(doc.Raw)
	if err != nil {
		return nil, describeError(err, doc.Location)
	}
	logger.Debug("resolved references", "count", count)

	m, err := model.Build(doc.Raw)
	if err != nil {
		return nil, describeError(err, doc.Location)
	}
	logger.Debug("built model", "methods", len(m.Methods), "tags", len(m.Tags))

	return &pipelineResult{Document: doc, Model: m, Refs: count}, nil
}

// selectMethods applies the tag, method and path filters from cfg.
func selectMethods(m *model.Model, cfg *Config) (*model.Model, error) {
	methods := make([]model.HTTPMethod, 0, len(cfg.Methods))
	for _, name := range cfg.Methods {
		methods = append(methods, model.HTTPMethod(name))
	}
	out, err := model.Select(m,
		model.WithIncludeTags(cfg.IncludeTags),
		model.WithExcludeTags(cfg.ExcludeTags),
		model.WithMethods(methods),
		model.WithPathPatterns(cfg.Paths),
	)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("select: %v", err))
	}
	return out, nil
}
