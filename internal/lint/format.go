package lint

import (
	"fmt"
	"io"
)

// WriteText renders a report as one line per finding.
func WriteText(w io.Writer, report *Report) {
	for _, f := range report.Findings {
		if f.Pos.Line > 0 {
			fmt.Fprintf(w, "%s: %s [%s] %s\n", f.Severity, f.Pos, f.Rule, f.Message)
			continue
		}

		fmt.Fprintf(w, "%s: [%s] %s\n", f.Severity, f.Rule, f.Message)
	}

	if len(report.Findings) == 0 {
		fmt.Fprintln(w, "no findings")
	}
}
