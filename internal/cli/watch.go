package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/declvar/internal/logging"
	"github.com/hupe1980/declvar/internal/watch"
)

type watchOptions struct {
	expandOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a document for changes and re-expand automatically",
		Long: `Watch monitors a declaration document and re-runs the expansion
whenever the file changes. File events are debounced to avoid rapid
re-runs.

Output must go to a file or directory; stdout is not supported in
watch mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchCmd(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.directive, "versions", "", "version directive (required)")
	f.StringVarP(&opts.output, "output", "o", "", "output file path")
	f.StringVar(&opts.outputDir, "output-dir", "", "write one <version>.yaml per variant into this directory")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")

	_ = cmd.MarkFlagRequired("versions")

	return cmd
}

func runWatchCmd(ctx context.Context, cmd *cobra.Command, file string, opts *watchOptions) error {
	if opts.output == "" && opts.outputDir == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output (-o) or --output-dir is required for watch mode")}
	}

	if opts.output != "" && opts.outputDir != "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output and --output-dir are mutually exclusive")}
	}

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		res, err := runPipeline(fnCtx, file, opts.directive)
		if err != nil {
			return nil, err
		}

		dest := opts.output

		if opts.outputDir != "" {
			dest = opts.outputDir

			if err := writeVariantDir(fnCtx, opts.outputDir, res.Variants); err != nil {
				return nil, err
			}
		} else {
			rendered, err := renderVariants(res.Variants)
			if err != nil {
				return nil, err
			}

			if err := writeFileAtomic(opts.output, rendered); err != nil {
				return nil, err
			}
		}

		return &watch.RunResult{
			VariantCount: len(res.Variants),
			OutputPath:   dest,
		}, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.File = file
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logging.FromContext(ctx)
	watchOpts.Out = cmd.ErrOrStderr()

	return watch.Run(ctx, watchOpts, runFn)
}
