// Command translatorctl is the CLI entrypoint for the translation workbench's
// project store and converter.
package main

import (
	"fmt"
	"os"

	"github.com/wegentic/translator-core/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
