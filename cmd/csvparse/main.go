// Command csvparse converts a CSV file to JSON on standard output.
package main

import (
	"os"

	"github.com/arturomorarioja/csv-parser-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
