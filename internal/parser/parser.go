// Package parser implements the reference recursive-descent parser for
// the AutoLang subset grammar. It produces the internal/ast vocabulary;
// everything past tokenization is this package's concern alone.
package parser

import (
	"fmt"

	"github.com/oxhq/autolang/internal/ast"
	"github.com/oxhq/autolang/internal/diag"
	"github.com/oxhq/autolang/internal/lexer"
)

// ParseError is a single malformed/unexpected-token failure, carrying
// one byte offset.
type ParseError struct {
	Msg    string
	Offset int
}

func (e *ParseError) Error() string { return e.Msg }

// Parse parses src, returning the first diagnostic encountered as an
// error (fail-fast convenience wrapper around ParsePreserveError).
func Parse(src string) (*ast.Program, error) {
	prog, diags := ParsePreserveError(src)
	if diags.HasErrors() {
		first := diags.All()[0]
		return nil, &first
	}
	return prog, nil
}

// ParsePreserveError parses src, collecting every lex/parse diagnostic
// found along the way instead of stopping at the first.
func ParsePreserveError(src string) (*ast.Program, diag.Diagnostics) {
	var diags diag.Diagnostics
	toks, err := lexer.Tokenize(src)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			diags.Add(diag.New(diag.KindLex, le.Msg, diag.Span{Source: "input", Offset: le.Offset, Length: 1}))
		} else {
			diags.Add(diag.New(diag.KindLex, err.Error()))
		}
		return nil, diags
	}

	p := &parser{toks: toks, src: src}
	body := p.parseBlockBody(false)
	diags.Add(p.errs...)
	prog := &ast.Program{Sp: ast.Span{Start: 0, End: len(src)}, Body: body}
	return prog, diags
}

type parser struct {
	toks []lexer.Token
	pos  int
	src  string
	errs []diag.Diagnostic
}

func (p *parser) cur() lexer.Token { return p.toks[p.pos] }
func (p *parser) atEOF() bool      { return p.cur().Kind == lexer.EOF }

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	return p.cur().Kind == lexer.PUNCT && p.cur().Text == s
}

func (p *parser) isKeyword(s string) bool {
	return p.cur().Kind == lexer.KEYWORD && p.cur().Text == s
}

func (p *parser) expectPunct(s string) bool {
	if p.isPunct(s) {
		p.advance()
		return true
	}
	p.recordErr(fmt.Sprintf("expected %q, got %q", s, p.cur().Text))
	return false
}

func (p *parser) recordErr(msg string) {
	p.errs = append(p.errs, diag.New(diag.KindParse, msg,
		diag.Span{Source: "input", Offset: p.cur().Start, Length: max1(p.cur().End - p.cur().Start)}))
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// resync advances to the next statement boundary after a parse error so
// later statements still parse (collect-and-continue).
func (p *parser) resync() {
	for !p.atEOF() && !p.isPunct(";") && !p.isPunct("}") {
		p.advance()
	}
	if p.isPunct(";") {
		p.advance()
	}
}

func spanOf(start, end lexer.Token) ast.Span {
	return ast.Span{Start: start.Start, End: end.End}
}

// --- blocks & statements ---

// parseBlockBody parses statements until EOF (top level) or until a
// closing '}' (nested block), returning the Block with its trailing
// expression (if the last statement is a bare expression) set as Result.
func (p *parser) parseBlockBody(nested bool) *ast.Block {
	start := p.cur()
	blk := &ast.Block{}
	for {
		if p.atEOF() {
			break
		}
		if nested && p.isPunct("}") {
			break
		}
		stmt, isTrailingExpr := p.parseStmt()
		if stmt == nil {
			continue
		}
		if isTrailingExpr && (p.atEOF() || (nested && p.isPunct("}"))) {
			blk.Result = stmt.(*ast.ExprStmt).X
			break
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	blk.SetSpan(spanOf(start, p.cur()))
	return blk
}

// parseStmt parses one statement. The second return value is true when
// the statement is a bare trailing expression that might become the
// enclosing block's Result.
func (p *parser) parseStmt() (ast.Stmt, bool) {
	switch {
	case p.isKeyword("let"):
		return p.parseLet(), false
	case p.isKeyword("fn"):
		return p.parseFuncDecl(), false
	case p.isKeyword("return"):
		return p.parseReturn(), false
	case p.isKeyword("for"):
		return p.parseFor(), false
	case p.isKeyword("while"):
		return p.parseWhile(), false
	case p.isKeyword("loop"):
		return p.parseLoop(), false
	default:
		start := p.cur()
		expr := p.parseExpr()
		if p.isPunct("=") {
			p.advance()
			val := p.parseExpr()
			p.consumeOptSemi()
			asn := &ast.AssignStmt{Target: expr, Value: val}
			asn.SetSpan(spanOf(start, p.cur()))
			return asn, false
		}
		trailing := !p.isPunct(";")
		p.consumeOptSemi()
		es := &ast.ExprStmt{X: expr}
		es.SetSpan(spanOf(start, p.cur()))
		return es, trailing
	}
}

func (p *parser) consumeOptSemi() {
	if p.isPunct(";") {
		p.advance()
	}
}

func (p *parser) parseLet() ast.Stmt {
	start := p.advance() // 'let'
	if p.cur().Kind != lexer.IDENT {
		p.recordErr("expected identifier after 'let'")
		p.resync()
		n := &ast.LetStmt{Name: "_error", Value: nilLitAt(start)}
		n.SetSpan(spanOf(start, p.cur()))
		return n
	}
	name := p.advance().Text
	typeAnno := ""
	if p.isPunct(":") {
		p.advance()
		if p.cur().Kind == lexer.IDENT {
			typeAnno = p.advance().Text
		}
	}
	if !p.expectPunct("=") {
		p.resync()
		n := &ast.LetStmt{Name: name, TypeAnno: typeAnno, Value: nilLitAt(start)}
		n.SetSpan(spanOf(start, p.cur()))
		return n
	}
	val := p.parseExpr()
	p.consumeOptSemi()
	n := &ast.LetStmt{Name: name, TypeAnno: typeAnno, Value: val}
	n.SetSpan(spanOf(start, p.cur()))
	return n
}

func nilLitAt(tok lexer.Token) ast.Expr {
	n := &ast.NilLit{}
	n.SetSpan(spanOf(tok, tok))
	return n
}

func (p *parser) parseFuncDecl() ast.Stmt {
	start := p.advance() // 'fn'
	name := ""
	if p.cur().Kind == lexer.IDENT {
		name = p.advance().Text
	} else {
		p.recordErr("expected function name after 'fn'")
	}
	var params []ast.Param
	if p.expectPunct("(") {
		for !p.isPunct(")") && !p.atEOF() {
			if p.cur().Kind == lexer.IDENT {
				params = append(params, ast.Param{Name: p.advance().Text})
			}
			if p.isPunct(",") {
				p.advance()
			}
		}
		p.expectPunct(")")
	}
	retType := ""
	if p.cur().Kind == lexer.IDENT {
		retType = p.advance().Text
	}
	body := p.parseBraceBlock()
	fd := &ast.FuncDecl{Name: name, Params: params, RetType: retType, Body: body}
	fd.SetSpan(spanOf(start, p.cur()))
	return fd
}

func (p *parser) parseBraceBlock() *ast.Block {
	if !p.expectPunct("{") {
		return &ast.Block{}
	}
	blk := p.parseBlockBody(true)
	p.expectPunct("}")
	return blk
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.advance() // 'return'
	var val ast.Expr
	if !p.isPunct(";") {
		val = p.parseExpr()
	}
	p.consumeOptSemi()
	rs := &ast.ReturnStmt{Value: val}
	rs.SetSpan(spanOf(start, p.cur()))
	return rs
}

func (p *parser) parseFor() ast.Stmt {
	start := p.advance() // 'for'
	first := ""
	second := ""
	if p.cur().Kind == lexer.IDENT {
		first = p.advance().Text
	}
	if p.isPunct(",") {
		p.advance()
		if p.cur().Kind == lexer.IDENT {
			second = p.advance().Text
		}
	}
	if !p.isKeyword("in") {
		p.recordErr("expected 'in' in for loop")
	} else {
		p.advance()
	}
	iterable := p.parseExpr()
	body := p.parseBraceBlock()

	indexVar, elemVar := "", first
	if second != "" {
		indexVar, elemVar = first, second
	}
	fs := &ast.ForStmt{IndexVar: indexVar, ElemVar: elemVar, Iterable: iterable, Body: body}
	fs.SetSpan(spanOf(start, p.cur()))
	return fs
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // 'while'
	cond := p.parseExpr()
	body := p.parseBraceBlock()
	ws := &ast.WhileStmt{Cond: cond, Body: body}
	ws.SetSpan(spanOf(start, p.cur()))
	return ws
}

func (p *parser) parseLoop() ast.Stmt {
	start := p.advance() // 'loop'
	body := p.parseBraceBlock()
	ls := &ast.LoopStmt{Body: body}
	ls.SetSpan(spanOf(start, p.cur()))
	return ls
}

// --- expressions (precedence climbing) ---

func (p *parser) parseExpr() ast.Expr { return p.parseOr() }

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.isPunct("||") {
		op := p.advance()
		right := p.parseAnd()
		bo := &ast.BinOp{Op: "||", Left: left, Right: right}
		bo.SetSpan(spanOf(op, op))
		left = bo
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.isPunct("&&") {
		op := p.advance()
		right := p.parseEquality()
		bo := &ast.BinOp{Op: "&&", Left: left, Right: right}
		bo.SetSpan(spanOf(op, op))
		left = bo
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.isPunct("==") || p.isPunct("!=") {
		op := p.advance()
		right := p.parseComparison()
		bo := &ast.BinOp{Op: op.Text, Left: left, Right: right}
		bo.SetSpan(spanOf(op, op))
		left = bo
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.isPunct("<") || p.isPunct("<=") || p.isPunct(">") || p.isPunct(">=") {
		op := p.advance()
		right := p.parseAdditive()
		bo := &ast.BinOp{Op: op.Text, Left: left, Right: right}
		bo.SetSpan(spanOf(op, op))
		left = bo
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.isPunct("+") || p.isPunct("-") {
		op := p.advance()
		right := p.parseMultiplicative()
		bo := &ast.BinOp{Op: op.Text, Left: left, Right: right}
		bo.SetSpan(spanOf(op, op))
		left = bo
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.isPunct("*") || p.isPunct("/") {
		op := p.advance()
		right := p.parseUnary()
		bo := &ast.BinOp{Op: op.Text, Left: left, Right: right}
		bo.SetSpan(spanOf(op, op))
		left = bo
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	switch {
	case p.isPunct("!") || p.isPunct("-"):
		op := p.advance()
		operand := p.parseUnary()
		uo := &ast.UnOp{Op: op.Text, Operand: operand}
		uo.SetSpan(spanOf(op, op))
		return uo
	case p.isKeyword("view"):
		op := p.advance()
		target := p.parseUnary()
		be := &ast.BorrowExpr{Kind: ast.BorrowView, Target: target}
		be.SetSpan(spanOf(op, op))
		return be
	case p.isKeyword("mut"):
		op := p.advance()
		target := p.parseUnary()
		be := &ast.BorrowExpr{Kind: ast.BorrowMut, Target: target}
		be.SetSpan(spanOf(op, op))
		return be
	case p.isKeyword("take"):
		op := p.advance()
		target := p.parseUnary()
		be := &ast.BorrowExpr{Kind: ast.BorrowTake, Target: target}
		be.SetSpan(spanOf(op, op))
		return be
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			if p.cur().Kind != lexer.IDENT {
				p.recordErr("expected field name after '.'")
				return expr
			}
			name := p.advance().Text
			fa := &ast.FieldAccess{Recv: expr, Name: name}
			fa.SetSpan(expr.Span())
			expr = fa
		case p.isPunct("("):
			expr = p.parseCall(expr)
		default:
			return expr
		}
	}
}

func (p *parser) parseCall(callee ast.Expr) ast.Expr {
	start := p.advance() // '('
	var args []ast.Arg
	for !p.isPunct(")") && !p.atEOF() {
		args = append(args, p.parseArg())
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct(")")
	c := &ast.Call{Callee: callee, Args: args}
	c.SetSpan(spanOf(start, p.cur()))
	return c
}

func (p *parser) parseArg() ast.Arg {
	if p.cur().Kind == lexer.IDENT && p.peekIsColon() {
		name := p.advance().Text
		p.advance() // ':'
		return ast.Arg{Name: name, Value: p.parseExpr()}
	}
	return ast.Arg{Value: p.parseExpr()}
}

func (p *parser) peekIsColon() bool {
	return p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == lexer.PUNCT && p.toks[p.pos+1].Text == ":"
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch {
	case tok.Kind == lexer.INT:
		p.advance()
		n := &ast.IntLit{Value: int32(tok.IntVal)}
		n.SetSpan(spanOf(tok, tok))
		return n
	case tok.Kind == lexer.FLOAT:
		p.advance()
		n := &ast.DoubleLit{Value: tok.FltVal}
		n.SetSpan(spanOf(tok, tok))
		return n
	case tok.Kind == lexer.STRING:
		p.advance()
		n := &ast.StrLit{Value: tok.Text}
		n.SetSpan(spanOf(tok, tok))
		return n
	case p.isKeyword("true"), p.isKeyword("false"):
		p.advance()
		n := &ast.BoolLit{Value: tok.Text == "true"}
		n.SetSpan(spanOf(tok, tok))
		return n
	case p.isKeyword("nil"):
		p.advance()
		return nilLitAt(tok)
	case p.isKeyword("null"):
		p.advance()
		n := &ast.NullLit{}
		n.SetSpan(spanOf(tok, tok))
		return n
	case p.isKeyword("void"):
		p.advance()
		n := &ast.VoidLit{}
		n.SetSpan(spanOf(tok, tok))
		return n
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("when"):
		return p.parseWhen()
	case tok.Kind == lexer.IDENT:
		p.advance()
		n := &ast.Ident{Name: tok.Text}
		n.SetSpan(spanOf(tok, tok))
		return n
	case p.isPunct("("):
		p.advance()
		inner := p.parseExpr()
		p.expectPunct(")")
		return inner
	case p.isPunct("["):
		return p.parseArrayLit()
	case p.isPunct("{"):
		return p.parseObjLit()
	default:
		p.recordErr(fmt.Sprintf("unexpected token %q", tok.Text))
		p.advance()
		return nilLitAt(tok)
	}
}

func (p *parser) parseArrayLit() ast.Expr {
	start := p.advance() // '['
	var elems []ast.Expr
	for !p.isPunct("]") && !p.atEOF() {
		elems = append(elems, p.parseExpr())
		if p.isPunct(",") {
			p.advance()
		}
	}
	p.expectPunct("]")
	a := &ast.ArrayLit{Elems: elems}
	a.SetSpan(spanOf(start, p.cur()))
	return a
}

func (p *parser) parseObjLit() ast.Expr {
	start := p.advance() // '{'
	var entries []ast.ObjEntry
	for !p.isPunct("}") && !p.atEOF() {
		if p.cur().Kind != lexer.IDENT {
			p.recordErr("expected field name in object literal")
			break
		}
		key := p.advance().Text
		if !p.expectPunct(":") {
			break
		}
		entries = append(entries, ast.ObjEntry{Key: key, Value: p.parseExpr()})
		if p.isPunct(",") || p.isPunct(";") {
			p.advance()
		}
	}
	p.expectPunct("}")
	o := &ast.ObjLit{Entries: entries}
	o.SetSpan(spanOf(start, p.cur()))
	return o
}

func (p *parser) parseIf() ast.Expr {
	start := p.advance() // 'if'
	cond := p.parseExpr()
	then := p.parseBraceBlock()
	var els *ast.Block
	if p.isKeyword("else") {
		p.advance()
		if p.isKeyword("if") {
			inner := p.parseIf()
			els = &ast.Block{Result: inner}
			els.SetSpan(inner.Span())
		} else {
			els = p.parseBraceBlock()
		}
	}
	n := &ast.If{Cond: cond, Then: then, Else: els}
	n.SetSpan(spanOf(start, p.cur()))
	return n
}

func (p *parser) parseWhen() ast.Expr {
	start := p.advance() // 'when'
	scrut := p.parseExpr()
	var arms []ast.WhenArm
	if p.expectPunct("{") {
		for !p.isPunct("}") && !p.atEOF() {
			if p.isKeyword("else") {
				p.advance()
				body := p.parseBraceBlock()
				arms = append(arms, ast.WhenArm{IsElse: true, Body: body})
				continue
			}
			if !p.isKeyword("is") {
				p.recordErr("expected 'is' or 'else' in when arm")
				p.resync()
				continue
			}
			p.advance()
			pat := p.parseExpr()
			body := p.parseBraceBlock()
			arms = append(arms, ast.WhenArm{Pattern: pat, Body: body})
		}
		p.expectPunct("}")
	}
	n := &ast.When{Scrutinee: scrut, Arms: arms}
	n.SetSpan(spanOf(start, p.cur()))
	return n
}
