// declvar expands version-annotated declaration documents into per-version variants.
package main

import (
	"os"

	"github.com/hupe1980/declvar/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
