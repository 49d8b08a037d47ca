package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/declvar/internal/config"
	"github.com/hupe1980/declvar/internal/emit"
	"github.com/hupe1980/declvar/internal/plan"
)

type diffOptions struct {
	directive    string
	contextLines int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <file> <version-a> <version-b>",
		Short: "Show the difference between two version variants",
		Long: `Diff expands the document for all versions in the directive and prints
a unified diff between the variants of the two named versions. Both
versions must appear in the directive and must survive filtering.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], args[1], args[2], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.directive, "versions", "", "version directive (required)")
	f.IntVar(&opts.contextLines, "context", 3, "number of context lines in the diff")

	_ = cmd.MarkFlagRequired("versions")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, file, verA, verB string, opts *diffOptions) error {
	res, err := runPipeline(ctx, file, opts.directive)
	if err != nil {
		return err
	}

	a, err := findVariant(res.Variants, verA)
	if err != nil {
		return err
	}

	b, err := findVariant(res.Variants, verB)
	if err != nil {
		return err
	}

	diffOpts := plan.DefaultDiffOptions()
	diffOpts.Context = opts.contextLines

	result, err := plan.CompareVariants(a, b, diffOpts)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("comparing variants: %w", err)}
	}

	cfg := config.FromContext(ctx)

	plan.WriteDiff(cmd.OutOrStdout(), result, !cfg.NoColor)

	return nil
}

func findVariant(variants []emit.Variant, version string) (emit.Variant, error) {
	for _, v := range variants {
		if v.Version == version {
			return v, nil
		}
	}

	return emit.Variant{}, &ExitError{
		Code: 2,
		Err:  fmt.Errorf("version %q was not emitted: not in the directive or fully filtered away", version),
	}
}
