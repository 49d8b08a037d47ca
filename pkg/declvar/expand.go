// Package declvar provides a public Go API for expanding version-annotated
// declaration documents into per-version variants.
//
// This package exposes the declvar expansion pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := declvar.Expand(ctx, doc, `v1_0, v1_1, v2_0`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, v := range result.Variants {
//	    fmt.Println(v.Version, string(v.YAML))
//	}
//
// With options:
//
//	result, err := declvar.Expand(ctx, doc, directive,
//	    declvar.WithFilename("defs.yaml"),
//	    declvar.WithWorkers(4),
//	)
package declvar

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/declvar/internal/decl"
	"github.com/hupe1980/declvar/internal/decl/declyaml"
	"github.com/hupe1980/declvar/internal/directive"
	"github.com/hupe1980/declvar/internal/emit"
	"github.com/hupe1980/declvar/internal/lint"
	"github.com/hupe1980/declvar/internal/vers"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Option configures the expansion pipeline.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	filename    string
	workers     int
	logger      *slog.Logger
	forcePublic bool
}

// WithFilename sets the filename used in error positions (default: "document.yaml").
func WithFilename(name string) Option { return func(o *options) { o.filename = name } }

// WithWorkers bounds the worker pool for parallel emission (default: GOMAXPROCS).
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithLogger sets the logger used by the pipeline (default: discard).
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithForcePublic rewrites every surviving visibility-bearing node to
// public, even in variants that are not wrapped in a synthesized
// container. Wrapped variants are forced public regardless.
func WithForcePublic() Option { return func(o *options) { o.forcePublic = true } }

// Variant is one emitted per-version rendering of the document.
type Variant struct {
	// Version is the registry name this variant was emitted for.
	Version string

	// YAML is the rendered variant document.
	YAML []byte

	// Node is the filtered declaration tree, for further manipulation.
	// It is a private deep copy; mutating it cannot corrupt YAML or any
	// other variant.
	Node decl.Node
}

// Result holds the output of a successful expansion.
type Result struct {
	// Variants are the emitted per-version documents, in directive order.
	// Versions whose whole document was filtered away are absent.
	Variants []Variant

	// Versions are all version names from the directive, in order.
	Versions []string

	// DeprecatedOptions lists deprecated directive option names that were
	// used, so callers can surface migration warnings.
	DeprecatedOptions []string
}

// Expand parses the directive, decodes the document, and emits one variant
// per version.
//
// The directive names the versions in order and may set document options,
// e.g. `"v1_0", "v1_1", nestTopLevel = true, features = true`. All errors
// are fatal; there is no partial result.
func Expand(ctx context.Context, doc []byte, directiveSrc string, opts ...Option) (*Result, error) {
	o := &options{
		filename: "document.yaml",
		logger:   discardLogger(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if len(doc) == 0 {
		return nil, fmt.Errorf("document must not be empty")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := directive.Parse(directiveSrc)
	if err != nil {
		return nil, fmt.Errorf("parsing directive: %w", err)
	}

	reg, err := vers.New(dir.Versions)
	if err != nil {
		return nil, fmt.Errorf("building version registry: %w", err)
	}

	root, err := declyaml.Decode(doc, o.filename)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	emitOpts := dir.Options
	if o.forcePublic {
		emitOpts.Visibility = emit.ForcePublic
	}

	variants, err := emit.EmitParallel(root, reg, emitOpts, o.workers)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Versions:          reg.Names(),
		DeprecatedOptions: dir.Deprecated,
	}

	for _, v := range variants {
		data, encErr := declyaml.Encode(v.Node)
		if encErr != nil {
			return nil, fmt.Errorf("encoding variant %q: %w", v.Version, encErr)
		}

		result.Variants = append(result.Variants, Variant{
			Version: v.Version,
			YAML:    data,
			Node:    decl.Clone(v.Node),
		})
	}

	o.logger.Info("expansion complete",
		slog.Int("versions", reg.Len()),
		slog.Int("variants", len(result.Variants)),
	)

	return result, nil
}

// Finding is a lint diagnostic about a declaration document.
type Finding struct {
	Severity string
	Rule     string
	Message  string
	Position string
}

// Lint analyses the document's filter annotations against the directive's
// versions and returns advisory findings. Unlike Expand, invalid filters do
// not fail the call; they are reported as findings.
func Lint(_ context.Context, doc []byte, directiveSrc string, opts ...Option) ([]Finding, error) {
	o := &options{filename: "document.yaml"}

	for _, opt := range opts {
		opt(o)
	}

	dir, err := directive.Parse(directiveSrc)
	if err != nil {
		return nil, fmt.Errorf("parsing directive: %w", err)
	}

	reg, err := vers.New(dir.Versions)
	if err != nil {
		return nil, fmt.Errorf("building version registry: %w", err)
	}

	root, err := declyaml.Decode(doc, o.filename)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	report := lint.Run(root, reg)

	findings := make([]Finding, 0, len(report.Findings))
	for _, f := range report.Findings {
		finding := Finding{
			Severity: f.Severity.String(),
			Rule:     f.Rule,
			Message:  f.Message,
		}

		if f.Pos.Line > 0 {
			finding.Position = f.Pos.String()
		}

		findings = append(findings, finding)
	}

	return findings, nil
}
