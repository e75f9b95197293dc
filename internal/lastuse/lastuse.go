// Package lastuse computes, for each linear binding in a function body,
// the set of AST sites that are its last use along every control-flow
// path reaching scope exit.
package lastuse

import "github.com/oxhq/autolang/internal/ast"

// IsLinearDecl reports whether a let binding introduces a linear value:
// either explicitly annotated (`let s: Linear = ...`) or inferred from an
// initializer call whose callee is an identifier containing "linear",
// case-insensitively (`make_linear`, `open_linear`, and similar).
func IsLinearDecl(let *ast.LetStmt) bool {
	if let.TypeAnno == "Linear" {
		return true
	}
	call, ok := let.Value.(*ast.Call)
	if !ok {
		return false
	}
	ident, ok := call.Callee.(*ast.Ident)
	if !ok {
		return false
	}
	return containsLinearHint(ident.Name)
}

func containsLinearHint(name string) bool {
	const hint = "linear"
	if len(name) < len(hint) {
		return false
	}
	for i := 0; i+len(hint) <= len(name); i++ {
		if toLower(name[i:i+len(hint)]) == hint {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Sites is the set of AST node identities (by pointer) marked as a last
// use for some binding. Identity equality via pointer is sufficient since
// analysis always runs over one parsed AST, never across copies.
type Sites map[ast.Expr]bool

// afterSet tracks, per binding name, whether a read of that binding has
// already been observed on the path walked so far (so further reads
// upstream are not last uses).
type afterSet map[string]bool

func (a afterSet) clone() afterSet {
	out := make(afterSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func intersectSeen(sets []afterSet) afterSet {
	if len(sets) == 0 {
		return afterSet{}
	}
	out := sets[0].clone()
	for _, s := range sets[1:] {
		for k := range out {
			if !s[k] {
				delete(out, k)
			}
		}
	}
	return out
}

// Analyze walks body in reverse control-flow order and returns the sites
// that are last uses of a linear binding.
func Analyze(body *ast.Block, linearNames map[string]bool) Sites {
	sites := Sites{}
	walkBlock(body, linearNames, afterSet{}, sites)
	return sites
}

// walkBlock processes the block's statements back to front, threading the
// "already seen" set from scope exit backward to scope entry, and returns
// the after-set as of entering this block (used by branch-join callers).
func walkBlock(b *ast.Block, linear map[string]bool, seen afterSet, sites Sites) afterSet {
	if b == nil {
		return seen
	}
	if b.Result != nil {
		seen = walkExpr(b.Result, linear, seen, sites)
	}
	for i := len(b.Stmts) - 1; i >= 0; i-- {
		seen = walkStmt(b.Stmts[i], linear, seen, sites)
	}
	return seen
}

func walkStmt(s ast.Stmt, linear map[string]bool, seen afterSet, sites Sites) afterSet {
	switch n := s.(type) {
	case *ast.LetStmt:
		seen = walkExpr(n.Value, linear, seen, sites)
		delete(seen, n.Name)
	case *ast.AssignStmt:
		seen = walkExpr(n.Value, linear, seen, sites)
		seen = walkExpr(n.Target, linear, seen, sites)
	case *ast.ExprStmt:
		seen = walkExpr(n.X, linear, seen, sites)
	case *ast.ReturnStmt:
		seen = afterSet{}
		if n.Value != nil {
			seen = walkExpr(n.Value, linear, seen, sites)
		}
	case *ast.ForStmt:
		bodySeen := walkBlock(n.Body, linear, seen.clone(), sites)
		joined := intersectSeen([]afterSet{seen, bodySeen})
		seen = walkExpr(n.Iterable, linear, joined, sites)
	case *ast.WhileStmt:
		bodySeen := walkBlock(n.Body, linear, seen.clone(), sites)
		joined := intersectSeen([]afterSet{seen, bodySeen})
		seen = walkExpr(n.Cond, linear, joined, sites)
	case *ast.LoopStmt:
		bodySeen := walkBlock(n.Body, linear, afterSet{}, sites)
		seen = intersectSeen([]afterSet{seen, bodySeen})
	case *ast.FuncDecl:
		walkBlock(n.Body, linear, afterSet{}, sites)
	}
	return seen
}

func walkExpr(e ast.Expr, linear map[string]bool, seen afterSet, sites Sites) afterSet {
	switch n := e.(type) {
	case *ast.Ident:
		if linear[n.Name] && !seen[n.Name] {
			sites[n] = true
			seen = seen.clone()
			seen[n.Name] = true
		}
	case *ast.BorrowExpr:
		seen = walkExpr(n.Target, linear, seen, sites)
	case *ast.BinOp:
		seen = walkExpr(n.Right, linear, seen, sites)
		seen = walkExpr(n.Left, linear, seen, sites)
	case *ast.UnOp:
		seen = walkExpr(n.Operand, linear, seen, sites)
	case *ast.FieldAccess:
		seen = walkExpr(n.Recv, linear, seen, sites)
	case *ast.Call:
		for i := len(n.Args) - 1; i >= 0; i-- {
			seen = walkExpr(n.Args[i].Value, linear, seen, sites)
		}
		seen = walkExpr(n.Callee, linear, seen, sites)
	case *ast.ArrayLit:
		for i := len(n.Elems) - 1; i >= 0; i-- {
			seen = walkExpr(n.Elems[i], linear, seen, sites)
		}
	case *ast.ObjLit:
		for i := len(n.Entries) - 1; i >= 0; i-- {
			seen = walkExpr(n.Entries[i].Value, linear, seen, sites)
		}
	case *ast.If:
		thenSeen := walkBlock(n.Then, linear, seen.clone(), sites)
		elseSeen := seen.clone()
		if n.Else != nil {
			elseSeen = walkBlock(n.Else, linear, elseSeen, sites)
		}
		joined := intersectSeen([]afterSet{thenSeen, elseSeen})
		seen = walkExpr(n.Cond, linear, joined, sites)
	case *ast.When:
		var branchSeens []afterSet
		for _, arm := range n.Arms {
			branchSeens = append(branchSeens, walkBlock(arm.Body, linear, seen.clone(), sites))
		}
		joined := seen
		if len(branchSeens) > 0 {
			joined = intersectSeen(branchSeens)
		}
		seen = walkExpr(n.Scrutinee, linear, joined, sites)
	case *ast.Block:
		seen = walkBlock(n, linear, seen, sites)
	}
	return seen
}

// IsLastUse reports whether ident was recorded as a last-use site.
func (s Sites) IsLastUse(ident ast.Expr) bool { return s[ident] }
