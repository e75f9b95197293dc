package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/autolang/internal/api"
	"github.com/oxhq/autolang/internal/config"
)

func newEvalConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval-config <file> -- [args...]",
		Short: "Evaluate a source file as config, binding trailing args as arg0, arg1, ...",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			path := args[0]
			rest := args[1:]
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			it, diags := api.EvalConfig(string(src), rest)
			out := cmd.OutOrStdout()
			if diags.HasErrors() {
				if cfg.JSONOutput {
					fmt.Fprintln(out, diags.JSON())
				} else {
					fmt.Fprint(out, diags.Render(map[string]string{path: string(src)}))
				}
				return fmt.Errorf("%d evaluation diagnostic(s)", diags.Len())
			}
			fmt.Fprintln(out, it.Result.Display())
			return nil
		},
	}
}
