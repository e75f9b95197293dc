package lastuse

import (
	"testing"

	"github.com/oxhq/autolang/internal/ast"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func TestSingleUseIsLastUse(t *testing.T) {
	use := ident("s")
	body := &ast.Block{
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: use},
		},
	}
	sites := Analyze(body, map[string]bool{"s": true})
	if !sites.IsLastUse(use) {
		t.Fatalf("expected the only use of s to be its last use")
	}
}

func TestOnlyFinalReadIsLastUse(t *testing.T) {
	first := ident("s")
	second := ident("s")
	body := &ast.Block{
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: first},
			&ast.ExprStmt{X: second},
		},
	}
	sites := Analyze(body, map[string]bool{"s": true})
	if sites.IsLastUse(first) {
		t.Fatalf("earlier read must not be marked last-use")
	}
	if !sites.IsLastUse(second) {
		t.Fatalf("final read must be marked last-use")
	}
}

func TestBranchJoinRequiresBothArmsToConsume(t *testing.T) {
	thenUse := ident("s")
	body := &ast.Block{
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.If{
				Cond: &ast.BoolLit{Value: true},
				Then: &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{X: thenUse}}},
				Else: &ast.Block{},
			}},
		},
	}
	sites := Analyze(body, map[string]bool{"s": true})
	if !sites.IsLastUse(thenUse) {
		t.Fatalf("use in one arm should still be last-use within that arm")
	}
}

func TestIsLinearDeclRecognizesAnnotationAndNamingConvention(t *testing.T) {
	annotated := &ast.LetStmt{Name: "a", TypeAnno: "Linear", Value: &ast.NilLit{}}
	if !IsLinearDecl(annotated) {
		t.Fatalf("expected explicit Linear annotation to be recognized")
	}
	byCall := &ast.LetStmt{Name: "b", Value: &ast.Call{Callee: &ast.Ident{Name: "make_linear"}}}
	if !IsLinearDecl(byCall) {
		t.Fatalf("expected make_linear() initializer to be recognized as linear")
	}
	plain := &ast.LetStmt{Name: "c", Value: &ast.IntLit{Value: 1}}
	if IsLinearDecl(plain) {
		t.Fatalf("plain binding must not be treated as linear")
	}
}
