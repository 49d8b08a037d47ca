package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/declvar/internal/config"
	"github.com/hupe1980/declvar/internal/decl"
	"github.com/hupe1980/declvar/internal/decl/declyaml"
	"github.com/hupe1980/declvar/internal/directive"
	"github.com/hupe1980/declvar/internal/emit"
	"github.com/hupe1980/declvar/internal/logging"
	"github.com/hupe1980/declvar/internal/vers"
)

// pipelineResult carries the intermediate artefacts of a full expansion run.
type pipelineResult struct {
	Root      decl.Node
	Directive *directive.Directive
	Registry  *vers.Registry
	Variants  []emit.Variant
}

// loadDocument reads and decodes a declaration document from disk.
func loadDocument(path string) (decl.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("reading document: %w", err)}
	}

	root, err := declyaml.Decode(data, path)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("decoding document: %w", err)}
	}

	return root, nil
}

// loadDirective parses the version directive string and builds the registry.
func loadDirective(src string) (*directive.Directive, *vers.Registry, error) {
	dir, err := directive.Parse(src)
	if err != nil {
		return nil, nil, &ExitError{Code: 2, Err: fmt.Errorf("parsing version directive: %w", err)}
	}

	reg, err := vers.New(dir.Versions)
	if err != nil {
		return nil, nil, &ExitError{Code: 2, Err: fmt.Errorf("building version registry: %w", err)}
	}

	return dir, reg, nil
}

// warnDeprecated logs a warning for each deprecated directive option used.
func warnDeprecated(logger *slog.Logger, dir *directive.Directive) {
	for _, key := range dir.Deprecated {
		logger.Warn("deprecated directive option",
			slog.String("option", key),
			slog.String("use", "nestTopLevel"),
		)
	}
}

// runPipeline decodes the document, parses the directive, and emits all
// version variants. Emission runs in parallel when the configuration asks
// for it.
func runPipeline(ctx context.Context, file, directiveSrc string) (*pipelineResult, error) {
	logger := logging.FromContext(ctx)

	root, err := loadDocument(file)
	if err != nil {
		return nil, err
	}

	dir, reg, err := loadDirective(directiveSrc)
	if err != nil {
		return nil, err
	}

	warnDeprecated(logger, dir)

	cfg := config.FromContext(ctx)

	variants, err := emit.EmitParallel(root, reg, dir.Options, cfg.Workers)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("emitting variants: %w", err)}
	}

	logger.Info("expansion complete",
		slog.Int("versions", reg.Len()),
		slog.Int("variants", len(variants)),
	)

	return &pipelineResult{
		Root:      root,
		Directive: dir,
		Registry:  reg,
		Variants:  variants,
	}, nil
}
