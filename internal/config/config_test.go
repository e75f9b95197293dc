package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func TestFromFlagsFlagOverridesEnv(t *testing.T) {
	os.Setenv("AUTOLANG_SESSION_DSN", "env.db")
	defer os.Unsetenv("AUTOLANG_SESSION_DSN")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--session", "flag.db", "--json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := FromFlags(fs)
	if err != nil {
		t.Fatalf("from flags: %v", err)
	}
	if cfg.SessionDSN != "flag.db" {
		t.Fatalf("expected flag value to win, got %q", cfg.SessionDSN)
	}
	if !cfg.JSONOutput {
		t.Fatalf("expected --json to set JSONOutput")
	}
}

func TestFromFlagsFallsBackToEnv(t *testing.T) {
	os.Setenv("AUTOLANG_SESSION_DSN", "env.db")
	defer os.Unsetenv("AUTOLANG_SESSION_DSN")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := FromFlags(fs)
	if err != nil {
		t.Fatalf("from flags: %v", err)
	}
	if cfg.SessionDSN != "env.db" {
		t.Fatalf("expected env fallback, got %q", cfg.SessionDSN)
	}
}
