package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.auto")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommandPrintsFinalValue(t *testing.T) {
	path := writeSource(t, "let x = 1; let y = 2; x + y")
	out, err := execute(t, "run", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "3") {
		t.Fatalf("expected output to contain 3, got %q", out)
	}
}

func TestParseCommandReportsDeclarationCount(t *testing.T) {
	path := writeSource(t, "fn add(a, b) int { a + b }\n")
	out, err := execute(t, "parse", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "1 top-level declaration") {
		t.Fatalf("expected a declaration count, got %q", out)
	}
}

func TestTransCCommandEmitsSignature(t *testing.T) {
	path := writeSource(t, "fn add(a, b) int { a + b }\n")
	out, err := execute(t, "trans-c", path)
	if err != nil {
		t.Fatalf("trans-c: %v", err)
	}
	if !strings.Contains(out, "int add(int a, int b)") {
		t.Fatalf("expected a C signature, got %q", out)
	}
}

func TestTransCWithSessionReportsDirtyCounts(t *testing.T) {
	path := writeSource(t, "fn a() int { 1 }\nfn b() int { 2 }\n")
	dsn := filepath.Join(t.TempDir(), "session.db")

	first, err := execute(t, "trans-c", path, "--session", dsn)
	if err != nil {
		t.Fatalf("trans-c: %v", err)
	}
	if !strings.Contains(first, "2 total, 2 dirty") {
		t.Fatalf("expected everything dirty on first sight, got %q", first)
	}

	second, err := execute(t, "trans-c", path, "--session", dsn)
	if err != nil {
		t.Fatalf("trans-c: %v", err)
	}
	if !strings.Contains(second, "2 total, 0 dirty") {
		t.Fatalf("expected a clean second pass, got %q", second)
	}
}

func TestSessionStatsReportsCounts(t *testing.T) {
	path := writeSource(t, "fn a() int { 1 }\n")
	dsn := filepath.Join(t.TempDir(), "session.db")

	if _, err := execute(t, "trans-c", path, "--session", dsn); err != nil {
		t.Fatalf("trans-c: %v", err)
	}

	out, err := execute(t, "session", "stats", "--session", dsn)
	if err != nil {
		t.Fatalf("session stats: %v", err)
	}
	if !strings.Contains(out, "1 total, 0 dirty") {
		t.Fatalf("expected the committed fragment to show clean, got %q", out)
	}
}

func TestTransCDiffShowsChangeAgainstCachedArtifact(t *testing.T) {
	path := writeSource(t, "fn a() int { 1 }\n")
	dsn := filepath.Join(t.TempDir(), "session.db")

	first, err := execute(t, "trans-c", path, "--session", dsn, "--diff")
	if err != nil {
		t.Fatalf("trans-c: %v", err)
	}
	if strings.Contains(first, "---") {
		t.Fatalf("first run has nothing cached to diff against, got %q", first)
	}

	if err := os.WriteFile(path, []byte("fn a() int { 2 }\n"), 0o644); err != nil {
		t.Fatalf("rewrite source: %v", err)
	}
	second, err := execute(t, "trans-c", path, "--session", dsn, "--diff")
	if err != nil {
		t.Fatalf("trans-c: %v", err)
	}
	if !strings.Contains(second, "---") || !strings.Contains(second, "+++") {
		t.Fatalf("expected a unified diff header, got %q", second)
	}
}

func TestEvalConfigBindsTrailingArgs(t *testing.T) {
	path := writeSource(t, "arg0")
	out, err := execute(t, "eval-config", path, "--", "hello")
	if err != nil {
		t.Fatalf("eval-config: %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected the bound argument to print, got %q", out)
	}
}
