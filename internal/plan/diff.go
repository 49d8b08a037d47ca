// Package plan renders textual diffs between emitted variants. The
// diff is a convenience view over the YAML renderings — it is not a
// structural merge and carries no versioning semantics of its own.
package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hupe1980/declvar/internal/decl/declyaml"
	"github.com/hupe1980/declvar/internal/emit"
)

// DiffResult holds the result of a unified diff between two variants.
type DiffResult struct {
	Unified        string
	HasDifferences bool
	Hunks          []string
	OldLabel       string
	NewLabel       string
}

// DiffOptions configures diff computation.
type DiffOptions struct {
	Context int
}

// DefaultDiffOptions returns sensible default diff options.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{Context: 3}
}

// CompareVariants renders both variants as YAML and computes a unified
// diff, labeled with the variant version names.
func CompareVariants(oldVariant, newVariant emit.Variant, opts DiffOptions) (*DiffResult, error) {
	oldDoc, err := declyaml.Encode(oldVariant.Node)
	if err != nil {
		return nil, fmt.Errorf("rendering variant %s: %w", oldVariant.Version, err)
	}

	newDoc, err := declyaml.Encode(newVariant.Node)
	if err != nil {
		return nil, fmt.Errorf("rendering variant %s: %w", newVariant.Version, err)
	}

	diff := difflib.UnifiedDiff{
		A:        splitLines(string(oldDoc)),
		B:        splitLines(string(newDoc)),
		FromFile: oldVariant.Version,
		ToFile:   newVariant.Version,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	result := &DiffResult{
		Unified:        unified,
		HasDifferences: unified != "",
		OldLabel:       oldVariant.Version,
		NewLabel:       newVariant.Version,
	}

	if result.HasDifferences {
		result.Hunks = extractHunks(unified)
	}

	return result, nil
}

// extractHunks splits unified diff output into individual hunks.
func extractHunks(unified string) []string {
	var hunks []string

	var current strings.Builder

	for _, line := range strings.Split(unified, "\n") {
		if strings.HasPrefix(line, "@@") {
			if current.Len() > 0 {
				hunks = append(hunks, current.String())
				current.Reset()
			}
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

// splitLines splits a document into lines, each retaining its newline,
// the way difflib expects.
func splitLines(doc string) []string {
	lines := strings.SplitAfter(doc, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// ANSI colors for diff output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

// WriteDiff writes the unified diff to w, optionally colorized.
func WriteDiff(w io.Writer, result *DiffResult, color bool) {
	if !result.HasDifferences {
		fmt.Fprintf(w, "variants %s and %s are identical\n", result.OldLabel, result.NewLabel)
		return
	}

	if !color {
		fmt.Fprint(w, result.Unified)
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprintf(w, "%s%s%s\n", colorGreen, line, colorReset)
		case strings.HasPrefix(line, "-"):
			fmt.Fprintf(w, "%s%s%s\n", colorRed, line, colorReset)
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintf(w, "%s%s%s\n", colorCyan, line, colorReset)
		default:
			fmt.Fprintln(w, line)
		}
	}
}
