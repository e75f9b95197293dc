package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/autolang/internal/api"
	"github.com/oxhq/autolang/internal/config"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file, printing diagnostics or its AST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			path := args[0]
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			prog, diags := api.ParsePreserveError(string(src))
			out := cmd.OutOrStdout()
			if diags.HasErrors() {
				if cfg.JSONOutput {
					fmt.Fprintln(out, diags.JSON())
				} else {
					fmt.Fprint(out, diags.Render(map[string]string{path: string(src)}))
				}
				return fmt.Errorf("%d parse diagnostic(s)", diags.Len())
			}

			if cfg.JSONOutput {
				b, err := json.MarshalIndent(prog, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal ast: %w", err)
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "%s: %d top-level declaration(s)\n", path, len(prog.Body.Stmts))
			return nil
		},
	}
}
