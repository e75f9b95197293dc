// Package config builds the CLI's runtime configuration from flags and
// environment, mirroring the flag-to-struct builder and .env-loaded
// override pattern used throughout the rest of this codebase's CLI shell.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the CLI's operational settings. Per the core API contract,
// none of this is read by internal/api itself — only this CLI shell
// consumes it, for its own convenience (session DSN default, JSON output,
// verbosity).
type Config struct {
	SessionDSN string
	JSONOutput bool
	Verbose    bool
}

// FromFlags builds a Config from an already-parsed flag set. The shared
// global flags must already be registered on fs (see RegisterFlags); a
// missing one is returned as an error.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	dsn, err := fs.GetString("session")
	if err != nil {
		return nil, err
	}
	jsonOut, err := fs.GetBool("json")
	if err != nil {
		return nil, err
	}
	verbose, err := fs.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	cfg := FromEnv()
	if dsn != "" {
		cfg.SessionDSN = dsn
	}
	if jsonOut {
		cfg.JSONOutput = true
	}
	if verbose {
		cfg.Verbose = true
	}
	return &cfg, nil
}

// RegisterFlags attaches the global flags FromFlags expects to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("session", "", "Fragment-cache session DSN (sqlite file path, or a libsql://, http(s):// URL).")
	fs.Bool("json", false, "Emit machine-readable JSON output.")
	fs.BoolP("verbose", "v", false, "Print one line per fragment in session mode.")
}

// FromEnv loads a .env file if present (silently ignored if absent) and
// returns the environment-derived defaults; apart from the libsql auth
// token read by fragstore.Open, the core API itself reads no environment
// variables.
func FromEnv() Config {
	_ = godotenv.Load()
	return Config{
		SessionDSN: os.Getenv("AUTOLANG_SESSION_DSN"),
		JSONOutput: os.Getenv("AUTOLANG_JSON") == "1",
		Verbose:    os.Getenv("AUTOLANG_VERBOSE") == "1",
	}
}
