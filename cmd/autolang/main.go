// Command autolang is the CLI shell over internal/api: parse, run,
// transpile (with or without an incremental session), and config
// evaluation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
