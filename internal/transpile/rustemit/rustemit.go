// Package rustemit emits Rust source for one AutoLang declaration at a
// time, the Rust-target plug-in internal/transpile selects.
package rustemit

import (
	"fmt"
	"strings"

	"github.com/oxhq/autolang/internal/ast"
)

// Name identifies this emitter to the transpile driver.
func Name() string { return "rust" }

// EmitDecl renders one top-level statement as a standalone Rust item.
func EmitDecl(stmt ast.Stmt) (string, error) {
	switch n := stmt.(type) {
	case *ast.FuncDecl:
		return emitFunc(n)
	case *ast.LetStmt:
		v, err := emitExpr(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("static %s: i64 = %s;", n.Name, v), nil
	default:
		return "", fmt.Errorf("rustemit: unsupported top-level declaration %T", stmt)
	}
}

func emitFunc(fn *ast.FuncDecl) (string, error) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name + ": i64"
	}
	sig := fmt.Sprintf("fn %s(%s) -> %s", fn.Name, strings.Join(params, ", "), rustType(fn.RetType))

	body, err := emitBlockBody(fn.Body)
	if err != nil {
		return "", err
	}
	return sig + " {\n" + body + "}\n", nil
}

func rustType(anno string) string {
	switch anno {
	case "Double":
		return "f64"
	case "Bool":
		return "bool"
	case "Str":
		return "String"
	case "":
		return "i64"
	default:
		return "i64"
	}
}

func emitBlockBody(b *ast.Block) (string, error) {
	var out strings.Builder
	for _, s := range b.Stmts {
		line, err := emitStmt(s)
		if err != nil {
			return "", err
		}
		out.WriteString("    ")
		out.WriteString(line)
		out.WriteString("\n")
	}
	if b.Result != nil {
		v, err := emitExpr(b.Result)
		if err != nil {
			return "", err
		}
		out.WriteString("    ")
		out.WriteString(v)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func emitStmt(s ast.Stmt) (string, error) {
	switch n := s.(type) {
	case *ast.LetStmt:
		v, err := emitExpr(n.Value)
		if err != nil {
			return "", err
		}
		mut := ""
		return fmt.Sprintf("let %s%s = %s;", mut, n.Name, v), nil
	case *ast.AssignStmt:
		target, err := emitExpr(n.Target)
		if err != nil {
			return "", err
		}
		v, err := emitExpr(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s;", target, v), nil
	case *ast.ExprStmt:
		v, err := emitExpr(n.X)
		if err != nil {
			return "", err
		}
		return v + ";", nil
	case *ast.ReturnStmt:
		if n.Value == nil {
			return "return;", nil
		}
		v, err := emitExpr(n.Value)
		if err != nil {
			return "", err
		}
		return "return " + v + ";", nil
	case *ast.WhileStmt:
		cond, err := emitExpr(n.Cond)
		if err != nil {
			return "", err
		}
		body, err := emitBlockBody(n.Body)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("while %s {\n%s    }", cond, body), nil
	case *ast.ForStmt:
		iter, err := emitExpr(n.Iterable)
		if err != nil {
			return "", err
		}
		body, err := emitBlockBody(n.Body)
		if err != nil {
			return "", err
		}
		elem := n.ElemVar
		return fmt.Sprintf("for %s in %s.iter() {\n%s    }", elem, iter, body), nil
	default:
		return "", fmt.Errorf("rustemit: unsupported statement %T", s)
	}
}

func emitExpr(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", n.Value), nil
	case *ast.DoubleLit:
		return fmt.Sprintf("%g", n.Value), nil
	case *ast.BoolLit:
		if n.Value {
			return "true", nil
		}
		return "false", nil
	case *ast.StrLit:
		return fmt.Sprintf("%q", n.Value), nil
	case *ast.Ident:
		return n.Name, nil
	case *ast.BinOp:
		l, err := emitExpr(n.Left)
		if err != nil {
			return "", err
		}
		r, err := emitExpr(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, rustOp(n.Op), r), nil
	case *ast.UnOp:
		v, err := emitExpr(n.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", rustOp(n.Op), v), nil
	case *ast.Call:
		callee, err := emitExpr(n.Callee)
		if err != nil {
			return "", err
		}
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			v, err := emitExpr(a.Value)
			if err != nil {
				return "", err
			}
			args[i] = v
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil
	case *ast.BorrowExpr:
		return emitExpr(n.Target)
	default:
		return "", fmt.Errorf("rustemit: unsupported expression %T", e)
	}
}

func rustOp(op string) string {
	if op == "!" {
		return "!"
	}
	return op
}
