package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/autolang/internal/api"
	"github.com/oxhq/autolang/internal/config"
	"github.com/oxhq/autolang/internal/workspace"
)

// newTransCmd builds the trans-c / trans-rust commands, which share
// everything except which api functions they call.
func newTransCmd(use, label string) *cobra.Command {
	target := strings.TrimPrefix(use, "trans-")
	cmd := &cobra.Command{
		Use:   use + " <file-or-dir>",
		Short: fmt.Sprintf("Transpile AutoLang source to %s", label),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			include, _ := cmd.Flags().GetStringSlice("include")
			exclude, _ := cmd.Flags().GetStringSlice("exclude")

			files, err := resolveTargets(args[0], include, exclude)
			if err != nil {
				return err
			}

			diffOnly, _ := cmd.Flags().GetBool("diff")
			out := cmd.OutOrStdout()
			if cfg.SessionDSN == "" {
				if diffOnly {
					return fmt.Errorf("--diff requires --session")
				}
				return transPlain(out, files, target)
			}
			return transWithSession(out, files, target, cfg, diffOnly)
		},
	}
	cmd.Flags().StringSlice("include", nil, "Glob patterns to include when the target is a directory.")
	cmd.Flags().StringSlice("exclude", nil, "Glob patterns to exclude when the target is a directory.")
	cmd.Flags().Bool("diff", false, "With --session, print a unified diff against the previously cached artifact instead of the full output.")
	return cmd
}

func resolveTargets(path string, include, exclude []string) ([]string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !stat.IsDir() {
		return []string{path}, nil
	}
	return workspace.Resolve([]string{path}, include, exclude)
}

// sourceContext re-reads f for diagnostic rendering; a failed read just
// means spans print without surrounding source text.
func sourceContext(f string) map[string]string {
	src, err := os.ReadFile(f)
	if err != nil {
		return map[string]string{f: ""}
	}
	return map[string]string{f: string(src)}
}

func transPlain(out io.Writer, files []string, target string) error {
	transFile := api.TransC
	if target == "rust" {
		transFile = api.TransRust
	}
	for _, f := range files {
		res, diags := transFile(f)
		if diags.HasErrors() {
			return fmt.Errorf("%s: %s", f, diags.Render(sourceContext(f)))
		}
		if len(files) > 1 {
			fmt.Fprintf(out, "// %s\n", f)
		}
		fmt.Fprintln(out, res)
	}
	return nil
}

func transWithSession(out io.Writer, files []string, target string, cfg *config.Config, diffOnly bool) error {
	sess, err := api.NewCompileSession(cfg.SessionDSN)
	if err != nil {
		return err
	}
	defer func() {
		if db := sess.DB(); db != nil {
			db.Close()
		}
	}()

	for _, f := range files {
		withSession := sess.TransCWithSession
		if target == "rust" {
			withSession = sess.TransRustWithSession
		}

		var before string
		if diffOnly {
			before = cachedArtifact(sess, f, target)
		}

		res, diags := withSession(f)
		if diags.HasErrors() {
			return fmt.Errorf("%s: %s", f, diags.Render(sourceContext(f)))
		}

		if len(files) > 1 {
			fmt.Fprintf(out, "// %s\n", f)
		}
		if diffOnly {
			if err := printDiff(out, f, before, res); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out, res)
		}
		if cfg.Verbose {
			for _, frag := range sess.Fragments() {
				status := "clean"
				if frag.Dirty {
					status = "dirty"
				}
				fmt.Fprintf(out, "  %s [%s] %s\n", frag.ID, frag.Target, status)
			}
		}
	}
	return nil
}

// cachedArtifact reassembles f's previously emitted output for target by
// concatenating its fragment rows sorted by declaration path, as they stood
// before the current run. An empty result means f has never been
// transpiled through this store before.
func cachedArtifact(sess *api.Session, f, target string) string {
	db := sess.DB()
	if db == nil {
		return ""
	}
	rows, err := db.ByFile(sess.FileID(f))
	if err != nil {
		return ""
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DeclPath < rows[j].DeclPath })
	var b strings.Builder
	for _, r := range rows {
		if r.Target != target {
			continue
		}
		b.WriteString(r.Artifact)
		b.WriteByte('\n')
	}
	return b.String()
}

// printDiff renders a unified diff of f's output across this run,
// falling back to the plain new output when there's nothing to compare
// against yet (first run) or nothing changed.
func printDiff(out io.Writer, f, before, after string) error {
	if before == "" || before == after {
		fmt.Fprintln(out, after)
		return nil
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: f + " (cached)",
		ToFile:   f + " (new)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return fmt.Errorf("diff %s: %w", f, err)
	}
	fmt.Fprint(out, text)
	return nil
}
