// Package api implements every external entry point the rest of the
// toolchain (CLI, and any future LSP/shell/code-generator collaborator)
// calls into: parse, run, config evaluation, and transpilation with or
// without an incremental session. Apart from AUTOLANG_LIBSQL_AUTH_TOKEN,
// which fragstore.Open reads when the session DSN names a remote libsql
// store, the core reads no environment variables.
package api

import (
	"fmt"
	"os"

	"github.com/oxhq/autolang/internal/ast"
	"github.com/oxhq/autolang/internal/diag"
	"github.com/oxhq/autolang/internal/fragstore"
	"github.com/oxhq/autolang/internal/interp"
	"github.com/oxhq/autolang/internal/parser"
	"github.com/oxhq/autolang/internal/session"
	"github.com/oxhq/autolang/internal/transpile"
	"github.com/oxhq/autolang/internal/value"
)

// Parse fails fast: the first diagnostic found is returned as a plain
// Go error, matching spec.md §6's parse(src) → AST signature.
func Parse(src string) (*ast.Program, error) {
	prog, diags := parser.ParsePreserveError(src)
	if diags.HasErrors() {
		return nil, diags.All()[0]
	}
	return prog, nil
}

// ParsePreserveError is the collect-and-continue counterpart to Parse:
// every diagnostic found during lex/parse is returned, not just the
// first.
func ParsePreserveError(src string) (*ast.Program, diag.Diagnostics) {
	return parser.ParsePreserveError(src)
}

// Run evaluates src and returns its final value's display form.
func Run(src string) (string, error) {
	prog, diags := parser.ParsePreserveError(src)
	if diags.HasErrors() {
		return "", diags.All()[0]
	}
	out, err := interp.Run(prog)
	if err != nil {
		return "", err
	}
	return out, nil
}

// EvalConfig evaluates src in config mode: the whole program runs for
// its side effects and final value, accessible via the returned
// interpreter's Result field, the shape template/config consumers read.
func EvalConfig(src string, args []string) (*interp.Interp, diag.Diagnostics) {
	prog, diags := parser.ParsePreserveError(src)
	if diags.HasErrors() {
		return nil, diags
	}
	it := interp.New()
	for i, a := range args {
		it.U.Define(fmt.Sprintf("arg%d", i), argValue(a))
	}
	if _, err := it.Eval(prog); err != nil {
		diags.Add(diag.New(diag.KindEvaluation, err.Error()))
		return nil, diags
	}
	return it, diags
}

// TransC reads path and transpiles it to C, with no incremental cache.
func TransC(path string) (string, diag.Diagnostics) { return transFile(path, transpile.TransC) }

// TransRust reads path and transpiles it to Rust, with no incremental cache.
func TransRust(path string) (string, diag.Diagnostics) { return transFile(path, transpile.TransRust) }

func transFile(path string, f func(string) (string, diag.Diagnostics)) (string, diag.Diagnostics) {
	src, err := os.ReadFile(path)
	if err != nil {
		var diags diag.Diagnostics
		diags.Add(diag.New(diag.KindFragmentEmit, err.Error()))
		return "", diags
	}
	return f(string(src))
}

// Session wraps the incremental-compilation state across repeated
// TransCWithSession / TransRustWithSession calls.
type Session struct {
	inner *session.Session
}

// NewCompileSession opens a session. An empty dsn keeps the fragment
// cache in memory only; any other dsn opens a durable fragstore-backed
// cache (sqlite file path, or a libsql://, http(s):// URL).
func NewCompileSession(dsn string) (*Session, error) {
	if dsn == "" {
		return &Session{inner: session.New()}, nil
	}
	store, err := fragstore.Open(dsn, false)
	if err != nil {
		return nil, fmt.Errorf("api: open session store: %w", err)
	}
	return &Session{inner: session.NewWithStore(store)}, nil
}

// DB exposes the backing fragment store for introspection, nil when the
// session has no durable store attached.
func (s *Session) DB() *fragstore.Store { return s.inner.DB() }

// Fragments lists every fragment currently known to the session.
func (s *Session) Fragments() []session.Fragment { return s.inner.Fragments() }

// FileID returns the fragment-cache identity s derives for path, stable
// for the lifetime of the session.
func (s *Session) FileID(path string) string { return s.inner.FileID(path) }

// TransCWithSession transpiles path to C through s's fragment cache.
func (s *Session) TransCWithSession(path string) (string, diag.Diagnostics) {
	src, err := os.ReadFile(path)
	if err != nil {
		var diags diag.Diagnostics
		diags.Add(diag.New(diag.KindFragmentEmit, err.Error()))
		return "", diags
	}
	return transpile.TransCWithSession(s.inner, path, string(src))
}

// TransRustWithSession transpiles path to Rust through s's fragment cache.
func (s *Session) TransRustWithSession(path string) (string, diag.Diagnostics) {
	src, err := os.ReadFile(path)
	if err != nil {
		var diags diag.Diagnostics
		diags.Add(diag.New(diag.KindFragmentEmit, err.Error()))
		return "", diags
	}
	return transpile.TransRustWithSession(s.inner, path, string(src))
}

func argValue(s string) value.Value { return value.Str(s) }
