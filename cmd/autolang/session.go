package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/autolang/internal/config"
	"github.com/oxhq/autolang/internal/fragstore"
)

func newSessionCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "session",
		Short: "Inspect an incremental-compilation fragment cache",
	}
	parent.AddCommand(newSessionStatsCmd())
	return parent
}

func newSessionStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print total and dirty fragment counts from a session store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.SessionDSN == "" {
				return fmt.Errorf("session stats requires --session <dsn>")
			}

			store, err := fragstore.Open(cfg.SessionDSN, false)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.All()
			if err != nil {
				return err
			}
			dirty := 0
			for _, r := range rows {
				if r.Dirty {
					dirty++
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[trans] %d total, %d dirty\n", len(rows), dirty)
			if cfg.Verbose {
				for _, r := range rows {
					status := "clean"
					if r.Dirty {
						status = "dirty"
					}
					fmt.Fprintf(out, "  %s [%s] %s\n", r.ID, r.Target, status)
				}
			}
			return nil
		},
	}
}
