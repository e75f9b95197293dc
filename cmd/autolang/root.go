package main

import (
	"github.com/spf13/cobra"

	"github.com/oxhq/autolang/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "autolang",
		Short: "Parse, run, and transpile AutoLang programs",
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(),
		newParseCmd(),
		newTransCmd("trans-c", "C"),
		newTransCmd("trans-rust", "Rust"),
		newSessionCmd(),
		newEvalConfigCmd(),
	)
	return root
}
