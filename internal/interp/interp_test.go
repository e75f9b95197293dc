package interp

import (
	"bytes"
	"testing"

	"github.com/oxhq/autolang/internal/ast"
	"github.com/oxhq/autolang/internal/value"
)

func program(stmts ...ast.Stmt) *ast.Program {
	return &ast.Program{Body: &ast.Block{Stmts: stmts}}
}

func TestEvalArithmeticAddsIntegers(t *testing.T) {
	p := program(&ast.ExprStmt{X: &ast.BinOp{
		Op:    "+",
		Left:  &ast.IntLit{Value: 2},
		Right: &ast.IntLit{Value: 3},
	}})
	p.Body.Result = p.Body.Stmts[0].(*ast.ExprStmt).X
	p.Body.Stmts = nil

	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindInt || v.Int() != 5 {
		t.Fatalf("expected Int(5), got %v", v.Display())
	}
}

func TestEvalIfPicksThenBranch(t *testing.T) {
	p := program()
	p.Body.Result = &ast.If{
		Cond: &ast.BoolLit{Value: true},
		Then: &ast.Block{Result: &ast.StrLit{Value: "yes"}},
		Else: &ast.Block{Result: &ast.StrLit{Value: "no"}},
	}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindStr || v.Str() != "yes" {
		t.Fatalf("expected Str(yes), got %v", v.Display())
	}
}

func TestEvalFunctionCallReturnsValue(t *testing.T) {
	p := program(
		&ast.FuncDecl{
			Name:   "double",
			Params: []ast.Param{{Name: "x"}},
			Body: &ast.Block{
				Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.BinOp{
					Op:    "*",
					Left:  &ast.Ident{Name: "x"},
					Right: &ast.IntLit{Value: 2},
				}}},
			},
		},
	)
	p.Body.Result = &ast.Call{
		Callee: &ast.Ident{Name: "double"},
		Args:   []ast.Arg{{Value: &ast.IntLit{Value: 21}}},
	}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindInt || v.Int() != 42 {
		t.Fatalf("expected Int(42), got %v", v.Display())
	}
}

func TestEvalForLoopSumsArray(t *testing.T) {
	p := program(
		&ast.LetStmt{Name: "total", Value: &ast.IntLit{Value: 0}},
		&ast.ForStmt{
			ElemVar:  "n",
			Iterable: &ast.ArrayLit{Elems: []ast.Expr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}, &ast.IntLit{Value: 3}}},
			Body: &ast.Block{
				Stmts: []ast.Stmt{&ast.AssignStmt{
					Target: &ast.Ident{Name: "total"},
					Value: &ast.BinOp{
						Op:    "+",
						Left:  &ast.Ident{Name: "total"},
						Right: &ast.Ident{Name: "n"},
					},
				}},
			},
		},
	)
	p.Body.Result = &ast.Ident{Name: "total"}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindInt || v.Int() != 6 {
		t.Fatalf("expected Int(6), got %v", v.Display())
	}
}

func TestEvalObjLiteralPreservesInsertionOrderOnDisplay(t *testing.T) {
	p := program(&ast.LetStmt{Name: "o", Value: &ast.ObjLit{Entries: []ast.ObjEntry{
		{Key: "z", Value: &ast.IntLit{Value: 1}},
		{Key: "a", Value: &ast.IntLit{Value: 2}},
		{Key: "m", Value: &ast.IntLit{Value: 3}},
	}}})
	p.Body.Result = &ast.Ident{Name: "o"}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindObj {
		t.Fatalf("expected Obj, got %v", v.Kind())
	}
	got := v.Display()
	want := "{z: 1; a: 2; m: 3}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEvalUndefinedNameErrors(t *testing.T) {
	p := program()
	p.Body.Result = &ast.Ident{Name: "nope"}
	if _, err := New().Eval(p); err == nil {
		t.Fatalf("expected an error for an undefined name")
	}
}

func TestEvalFieldAccessOnObj(t *testing.T) {
	p := program(&ast.LetStmt{Name: "o", Value: &ast.ObjLit{Entries: []ast.ObjEntry{
		{Key: "x", Value: &ast.IntLit{Value: 7}},
	}}})
	p.Body.Result = &ast.FieldAccess{Recv: &ast.Ident{Name: "o"}, Name: "x"}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindInt || v.Int() != 7 {
		t.Fatalf("expected Int(7), got %v", v.Display())
	}
}

func TestEvalUseBuiltinReturnsItsArgument(t *testing.T) {
	p := program()
	p.Body.Result = &ast.Call{
		Callee: &ast.Ident{Name: "use"},
		Args:   []ast.Arg{{Value: &ast.IntLit{Value: 9}}},
	}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindInt || v.Int() != 9 {
		t.Fatalf("expected Int(9), got %v", v.Display())
	}
}

func TestMakeLinearThenUseReturnsTheSameRef(t *testing.T) {
	p := program(&ast.LetStmt{Name: "s", Value: &ast.Call{Callee: &ast.Ident{Name: "make_linear"}}})
	p.Body.Result = &ast.Call{Callee: &ast.Ident{Name: "use"}, Args: []ast.Arg{{Value: &ast.Ident{Name: "s"}}}}
	v, err := New().Eval(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindVmRef {
		t.Fatalf("expected a vmref back from use, got %v", v.Display())
	}
}

func TestUseAfterCloseIsRejected(t *testing.T) {
	p := program(
		&ast.LetStmt{Name: "s", Value: &ast.Call{Callee: &ast.Ident{Name: "make_linear"}}},
		&ast.ExprStmt{X: &ast.Call{Callee: &ast.Ident{Name: "close"}, Args: []ast.Arg{{Value: &ast.Ident{Name: "s"}}}}},
	)
	p.Body.Result = &ast.Call{Callee: &ast.Ident{Name: "use"}, Args: []ast.Arg{{Value: &ast.Ident{Name: "s"}}}}
	_, err := New().Eval(p)
	if err == nil {
		t.Fatalf("expected use-after-close to fail")
	}
}

func TestPrintWritesSpaceJoinedArgsToOut(t *testing.T) {
	p := program()
	p.Body.Result = &ast.Call{
		Callee: &ast.Ident{Name: "print"},
		Args: []ast.Arg{
			{Value: &ast.StrLit{Value: "a"}},
			{Value: &ast.IntLit{Value: 1}},
		},
	}
	it := New()
	var buf bytes.Buffer
	it.Out = &buf
	if _, err := it.Eval(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "a 1\n"; got != want {
		t.Fatalf("print wrote %q, want %q", got, want)
	}
}
