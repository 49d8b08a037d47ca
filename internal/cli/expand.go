package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/declvar/internal/decl/declyaml"
	"github.com/hupe1980/declvar/internal/emit"
	"github.com/hupe1980/declvar/internal/logging"
)

type expandOptions struct {
	directive string
	output    string
	outputDir string
}

func newExpandCommand() *cobra.Command {
	opts := &expandOptions{}

	cmd := &cobra.Command{
		Use:   "expand <file>",
		Short: "Expand a declaration document into per-version variants",
		Long: `Expand reads a declaration document, evaluates every version filter
annotation against the versions named in the directive, and emits one
variant of the document per version, in directive order.

By default all variants are written to stdout separated by "---".
Use --output to write them to a single file, or --output-dir to write
one <version>.yaml file per variant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.directive, "versions", "", `version directive, e.g. "v1_0, v1_1, nestTopLevel = true" (required)`)
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.StringVar(&opts.outputDir, "output-dir", "", "write one <version>.yaml per variant into this directory")

	_ = cmd.MarkFlagRequired("versions")

	return cmd
}

func runExpand(ctx context.Context, cmd *cobra.Command, file string, opts *expandOptions) error {
	if opts.output != "" && opts.outputDir != "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output and --output-dir are mutually exclusive")}
	}

	res, err := runPipeline(ctx, file, opts.directive)
	if err != nil {
		return err
	}

	if opts.outputDir != "" {
		return writeVariantDir(ctx, opts.outputDir, res.Variants)
	}

	rendered, err := renderVariants(res.Variants)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, rendered, 0o644); err != nil {
			return &ExitError{Code: 1, Err: fmt.Errorf("writing output: %w", err)}
		}

		logging.FromContext(ctx).Info("output written", slog.String("file", opts.output))

		return nil
	}

	_, err = cmd.OutOrStdout().Write(rendered)

	return err
}

// renderVariants encodes all variants into a single "---" separated stream.
func renderVariants(variants []emit.Variant) ([]byte, error) {
	var out []byte

	for i, v := range variants {
		data, err := declyaml.Encode(v.Node)
		if err != nil {
			return nil, &ExitError{Code: 1, Err: fmt.Errorf("encoding variant %q: %w", v.Version, err)}
		}

		if i > 0 {
			out = append(out, []byte("---\n")...)
		}

		out = append(out, data...)
	}

	return out, nil
}

// writeFileAtomic writes data to path via a temp file plus rename, so a
// concurrent reader never sees a half-written document.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("writing output: %w", err)}
	}

	if err := os.Rename(tmp, path); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("writing output: %w", err)}
	}

	return nil
}

// writeVariantDir writes each variant to <dir>/<version>.yaml.
func writeVariantDir(ctx context.Context, dir string, variants []emit.Variant) error {
	logger := logging.FromContext(ctx)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("creating output directory: %w", err)}
	}

	for _, v := range variants {
		data, err := declyaml.Encode(v.Node)
		if err != nil {
			return &ExitError{Code: 1, Err: fmt.Errorf("encoding variant %q: %w", v.Version, err)}
		}

		path := filepath.Join(dir, v.Version+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return &ExitError{Code: 1, Err: fmt.Errorf("writing variant %q: %w", v.Version, err)}
		}

		logger.Debug("variant written", slog.String("version", v.Version), slog.String("file", path))
	}

	logger.Info("variants written", slog.String("dir", dir), slog.Int("count", len(variants)))

	return nil
}
