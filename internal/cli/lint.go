package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/declvar/internal/lint"
)

type lintOptions struct {
	directive string
	strict    bool
}

func newLintCommand() *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint <file>",
		Short: "Check a declaration document for filter problems",
		Long: `Lint analyses the version filter annotations in a declaration document
and reports problems: invalid filter expressions, references to unknown
versions, filters that can never match, prefixes that match no version,
duplicate filter annotations, and version lists that are not in semantic
version order.

Errors make the command exit non-zero; warnings do not unless --strict
is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.directive, "versions", "", "version directive (required)")
	f.BoolVar(&opts.strict, "strict", false, "treat warnings as errors")

	_ = cmd.MarkFlagRequired("versions")

	return cmd
}

func runLint(ctx context.Context, cmd *cobra.Command, file string, opts *lintOptions) error {
	root, err := loadDocument(file)
	if err != nil {
		return err
	}

	_, reg, err := loadDirective(opts.directive)
	if err != nil {
		return err
	}

	report := lint.Run(root, reg)

	lint.WriteText(cmd.OutOrStdout(), report)

	if report.HasErrors() || (opts.strict && report.HasWarnings()) {
		return &ExitError{Code: 1, Err: fmt.Errorf("lint found problems")}
	}

	return nil
}
