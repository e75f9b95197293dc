// Package transpile orchestrates parse, last-use analysis, borrow
// checking, and per-target emission, with an optional incremental
// session that skips unchanged fragments.
package transpile

import (
	"strings"

	"github.com/oxhq/autolang/internal/ast"
	"github.com/oxhq/autolang/internal/borrow"
	"github.com/oxhq/autolang/internal/diag"
	"github.com/oxhq/autolang/internal/lastuse"
	"github.com/oxhq/autolang/internal/parser"
	"github.com/oxhq/autolang/internal/session"
	"github.com/oxhq/autolang/internal/transpile/cemit"
	"github.com/oxhq/autolang/internal/transpile/rustemit"
)

// emitDecl renders one top-level statement for a target language.
type emitDecl func(stmt ast.Stmt) (string, error)

var emitters = map[string]emitDecl{
	cemit.Name():    cemit.EmitDecl,
	rustemit.Name(): rustemit.EmitDecl,
}

// TransC is the full (non-incremental) C transpile entry point.
func TransC(src string) (string, diag.Diagnostics) { return trans(src, cemit.Name()) }

// TransRust is the full (non-incremental) Rust transpile entry point.
func TransRust(src string) (string, diag.Diagnostics) { return trans(src, rustemit.Name()) }

// checkOwnership runs last-use analysis and the borrow checker over
// every function body in prog and returns the accumulated diagnostics.
func checkOwnership(prog *ast.Program) diag.Diagnostics {
	var all diag.Diagnostics
	var walk func(b *ast.Block)
	walk = func(b *ast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			if fn, ok := s.(*ast.FuncDecl); ok {
				linear := map[string]bool{}
				for _, inner := range fn.Body.Stmts {
					if let, ok := inner.(*ast.LetStmt); ok && lastuse.IsLinearDecl(let) {
						linear[let.Name] = true
					}
				}
				d := borrow.Check(fn.Body, linear)
				for _, item := range d.All() {
					all.Add(item)
				}
			}
		}
	}
	walk(prog.Body)
	return all
}

func trans(src, target string) (string, diag.Diagnostics) {
	prog, diags := parser.ParsePreserveError(src)
	if diags.HasErrors() {
		return "", diags
	}
	ownershipDiags := checkOwnership(prog)
	if ownershipDiags.HasErrors() {
		return "", ownershipDiags
	}

	em := emitters[target]
	var parts []string
	for _, stmt := range prog.Body.Stmts {
		out, err := em(stmt)
		if err != nil {
			diags.Add(diag.New(diag.KindFragmentEmit, err.Error()))
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n"), diags
}

// TransCWithSession transpiles to C through sess's fragment cache,
// reusing clean fragments and emitting only dirty ones.
func TransCWithSession(sess *session.Session, path, src string) (string, diag.Diagnostics) {
	return transWithSession(sess, path, src, cemit.Name())
}

// TransRustWithSession transpiles to Rust through sess's fragment cache.
func TransRustWithSession(sess *session.Session, path, src string) (string, diag.Diagnostics) {
	return transWithSession(sess, path, src, rustemit.Name())
}

func transWithSession(sess *session.Session, path, src, target string) (string, diag.Diagnostics) {
	prog, diags := parser.ParsePreserveError(src)
	if diags.HasErrors() {
		return "", diags
	}
	ownershipDiags := checkOwnership(prog)
	if ownershipDiags.HasErrors() {
		return "", ownershipDiags
	}

	byPath := make(map[string]ast.Stmt, len(prog.Body.Stmts))
	for _, stmt := range prog.Body.Stmts {
		byPath[declPath(stmt)] = stmt
	}

	em := emitters[target]
	frags := sess.Sync(path, target, src)
	for _, f := range frags {
		if !f.Dirty {
			continue
		}
		stmt, ok := byPath[f.DeclPath]
		if !ok {
			diags.Add(diag.New(diag.KindFragmentEmit, "transpile: no declaration found for fragment "+f.DeclPath))
			continue
		}
		out, err := em(stmt)
		if err != nil {
			diags.Add(diag.New(diag.KindFragmentEmit, err.Error()))
			continue
		}
		f.Artifact = out
	}
	if err := sess.Commit(frags); err != nil {
		diags.Add(diag.New(diag.KindFragmentEmit, err.Error()))
	}

	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.Artifact)
	}
	parts = append(parts, session.Stat(frags).String())
	return strings.Join(parts, "\n"), diags
}

func declPath(stmt ast.Stmt) string {
	switch n := stmt.(type) {
	case *ast.FuncDecl:
		return "fn " + n.Name
	case *ast.LetStmt:
		return "let " + n.Name
	default:
		return ""
	}
}
