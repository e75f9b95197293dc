// Package borrow implements the static borrow checker: move-state
// tracking per linear binding plus an active-borrows table, checked at
// each read, view, mut, and take site.
package borrow

import (
	"github.com/oxhq/autolang/internal/ast"
	"github.com/oxhq/autolang/internal/diag"
	"github.com/oxhq/autolang/internal/lastuse"
	"github.com/oxhq/autolang/internal/lifetime"
)

// borrowRecord is one in-flight borrow, with its ast.BorrowKind.
// scope is the block lifetime the borrow was taken in: it ends, and the
// record is released, when that block exits.
type borrowRecord struct {
	kind  ast.BorrowKind
	span  ast.Span
	scope lifetime.Lifetime
}

type moveState int

const (
	available moveState = iota
	moved
)

type bindingState struct {
	declSpan  ast.Span
	declScope lifetime.Lifetime
	move      moveState
	borrows   []borrowRecord
}

// Checker walks a function body and reports every ownership-rule
// violation it finds, without stopping at the first (collect-and-continue
// per the error-handling policy shared with lex/parse/resolve/type).
type Checker struct {
	bindings map[string]*bindingState
	linear   map[string]bool
	sites    lastuse.Sites
	diags    diag.Diagnostics

	ctx        *lifetime.Context
	scopeStack []lifetime.Lifetime
	funcScope  lifetime.Lifetime
}

// NewChecker prepares a checker for one function body. linearNames names
// the bindings in scope that carry linear semantics.
func NewChecker(body *ast.Block, linearNames map[string]bool) *Checker {
	return &Checker{
		bindings: make(map[string]*bindingState),
		linear:   linearNames,
		sites:    lastuse.Analyze(body, linearNames),
		ctx:      lifetime.NewContext(),
	}
}

// Check runs the checker over body and returns the diagnostics found.
func Check(body *ast.Block, linearNames map[string]bool) diag.Diagnostics {
	c := NewChecker(body, linearNames)
	c.checkBlock(body)
	return c.diags
}

func (c *Checker) pushScope() lifetime.Lifetime {
	l := c.ctx.Fresh()
	c.scopeStack = append(c.scopeStack, l)
	return l
}

func (c *Checker) currentScope() lifetime.Lifetime {
	return c.scopeStack[len(c.scopeStack)-1]
}

// popScope closes the innermost scope and releases every view/mut borrow
// taken within it: borrows are lexically scoped to the block that took
// them, same as the bindings they borrow from would be.
func (c *Checker) popScope() {
	closing := c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
	for _, st := range c.bindings {
		kept := st.borrows[:0]
		for _, rec := range st.borrows {
			if rec.scope != closing {
				kept = append(kept, rec)
			}
		}
		st.borrows = kept
	}
}

func (c *Checker) declare(name string, span ast.Span) {
	if !c.linear[name] {
		return
	}
	c.bindings[name] = &bindingState{declSpan: span, declScope: c.currentScope()}
}

func (c *Checker) state(name string) *bindingState {
	st, ok := c.bindings[name]
	if !ok {
		st = &bindingState{}
		c.bindings[name] = st
	}
	return st
}

func (c *Checker) checkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	outermost := len(c.scopeStack) == 0
	c.pushScope()
	if outermost {
		c.funcScope = c.currentScope()
	}
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.Result != nil {
		c.checkExpr(b.Result)
		if outermost {
			c.checkOutlives(b.Result)
		}
	}
	c.popScope()
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.checkExpr(n.Value)
		c.declare(n.Name, n.Span())
	case *ast.AssignStmt:
		c.checkExpr(n.Value)
		c.checkExpr(n.Target)
	case *ast.ExprStmt:
		c.checkExpr(n.X)
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.checkExpr(n.Value)
			c.checkOutlives(n.Value)
		}
	case *ast.ForStmt:
		c.checkExpr(n.Iterable)
		c.checkBlock(n.Body)
	case *ast.WhileStmt:
		c.checkExpr(n.Cond)
		c.checkBlock(n.Body)
	case *ast.LoopStmt:
		c.checkBlock(n.Body)
	case *ast.FuncDecl:
		c.checkBlock(n.Body)
	}
}

func (c *Checker) checkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		c.checkRead(n)
	case *ast.BorrowExpr:
		c.checkBorrow(n)
	case *ast.BinOp:
		c.checkExpr(n.Left)
		c.checkExpr(n.Right)
	case *ast.UnOp:
		c.checkExpr(n.Operand)
	case *ast.FieldAccess:
		c.checkExpr(n.Recv)
	case *ast.Call:
		c.checkExpr(n.Callee)
		for _, a := range n.Args {
			c.checkExpr(a.Value)
		}
	case *ast.ArrayLit:
		for _, el := range n.Elems {
			c.checkExpr(el)
		}
	case *ast.ObjLit:
		for _, entry := range n.Entries {
			c.checkExpr(entry.Value)
		}
	case *ast.If:
		c.checkExpr(n.Cond)
		c.checkBlock(n.Then)
		c.checkBlock(n.Else)
	case *ast.When:
		c.checkExpr(n.Scrutinee)
		for _, arm := range n.Arms {
			c.checkBlock(arm.Body)
		}
	case *ast.Block:
		c.checkBlock(n)
	}
}

func (c *Checker) checkRead(id *ast.Ident) {
	if !c.linear[id.Name] {
		return
	}
	st := c.state(id.Name)
	if st.move == moved {
		c.diags.Add(diag.Ownership(
			"use of moved value '"+id.Name+"'",
			diag.Span{Offset: st.declSpan.Start, Length: 1},
			diag.Span{Offset: id.Span().Start, Length: 1},
		))
	}
}

func (c *Checker) checkBorrow(b *ast.BorrowExpr) {
	id, ok := b.Target.(*ast.Ident)
	if !ok {
		c.checkExpr(b.Target)
		return
	}
	if !c.linear[id.Name] {
		return
	}
	st := c.state(id.Name)
	if st.move == moved {
		c.diags.Add(diag.Ownership(
			"use of moved value '"+id.Name+"'",
			diag.Span{Offset: st.declSpan.Start, Length: 1},
			diag.Span{Offset: b.Span().Start, Length: 1},
		))
		return
	}

	switch b.Kind {
	case ast.BorrowView:
		if conflict := firstBorrowOfKind(st.borrows, ast.BorrowMut, ast.BorrowTake); conflict != nil {
			c.conflict(id.Name, *conflict, b.Span())
			return
		}
		st.borrows = append(st.borrows, borrowRecord{kind: ast.BorrowView, span: b.Span(), scope: c.currentScope()})
	case ast.BorrowMut:
		if len(st.borrows) > 0 {
			c.conflict(id.Name, st.borrows[0], b.Span())
			return
		}
		st.borrows = append(st.borrows, borrowRecord{kind: ast.BorrowMut, span: b.Span(), scope: c.currentScope()})
	case ast.BorrowTake:
		if len(st.borrows) > 0 {
			c.conflict(id.Name, st.borrows[0], b.Span())
			return
		}
		st.move = moved
		st.borrows = nil
	}
}

// checkOutlives flags a view/mut borrow of a binding declared inside a
// scope narrower than the function's own top-level body, when that
// borrow is the value handed back through return or as the body's own
// trailing result: the binding dies at the end of its declaring block,
// so a borrow of it can't survive long enough to reach the caller.
func (c *Checker) checkOutlives(e ast.Expr) {
	b, ok := e.(*ast.BorrowExpr)
	if !ok || b.Kind == ast.BorrowTake {
		return
	}
	id, ok := b.Target.(*ast.Ident)
	if !ok || !c.linear[id.Name] {
		return
	}
	st, ok := c.bindings[id.Name]
	if !ok {
		return
	}
	if !lifetime.Outlives(st.declScope, c.funcScope) {
		c.diags.Add(diag.Ownership(
			"borrowed value '"+id.Name+"' does not outlive the function returning it",
			diag.Span{Offset: st.declSpan.Start, Length: 1},
			diag.Span{Offset: b.Span().Start, Length: 1},
		))
	}
}

func (c *Checker) conflict(name string, existing borrowRecord, at ast.Span) {
	c.diags.Add(diag.Ownership(
		"borrow conflict on '"+name+"': existing "+existing.kind.String()+" borrow is still active",
		diag.Span{Offset: existing.span.Start, Length: 1},
		diag.Span{Offset: at.Start, Length: 1},
	))
}

func firstBorrowOfKind(borrows []borrowRecord, kinds ...ast.BorrowKind) *borrowRecord {
	for i, b := range borrows {
		for _, k := range kinds {
			if b.kind == k {
				return &borrows[i]
			}
		}
	}
	return nil
}
