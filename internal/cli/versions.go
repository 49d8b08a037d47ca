package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/declvar/internal/decl"
)

type versionsOptions struct {
	directive string
}

func newVersionsCommand() *cobra.Command {
	opts := &versionsOptions{}

	cmd := &cobra.Command{
		Use:   "versions <file>",
		Short: "Show how many declarations survive in each version",
		Long: `Versions runs the expansion and prints a what-if table: for each
version in the directive, the number of declarations that survive
filtering, out of the total in the document. Versions whose entire
document is filtered away are marked as omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.directive, "versions", "", "version directive (required)")
	_ = cmd.MarkFlagRequired("versions")

	return cmd
}

func runVersions(ctx context.Context, cmd *cobra.Command, file string, opts *versionsOptions) error {
	res, err := runPipeline(ctx, file, opts.directive)
	if err != nil {
		return err
	}

	total := countDeclarations(res.Root)

	emitted := make(map[string]int, len(res.Variants))
	for _, v := range res.Variants {
		emitted[v.Version] = countDeclarations(v.Node)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tDECLARATIONS\tSTATUS")

	for _, name := range res.Registry.Names() {
		count, ok := emitted[name]
		if !ok {
			fmt.Fprintf(w, "%s\t-\tomitted\n", name)
			continue
		}

		fmt.Fprintf(w, "%s\t%d/%d\temitted\n", name, count, total)
	}

	return w.Flush()
}

// countDeclarations counts every named declaration in the tree, including
// fields, variants, and behavior members. Wrapper containers synthesized
// during emission count like any other container.
func countDeclarations(node decl.Node) int {
	if node == nil {
		return 0
	}

	count := 1

	switch n := node.(type) {
	case *decl.Container:
		for _, child := range n.Children {
			count += countDeclarations(child)
		}
	case *decl.Struct:
		count += len(n.Fields)
	case *decl.Enum:
		for _, v := range n.Variants {
			count += 1 + len(v.Fields)
		}
	case *decl.Behavior:
		count += len(n.Members)
	}

	return count
}
