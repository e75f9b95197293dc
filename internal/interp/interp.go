// Package interp implements the tree-walk evaluator over internal/ast,
// consulting internal/universe for bindings and types.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/oxhq/autolang/internal/ast"
	"github.com/oxhq/autolang/internal/atomtree"
	"github.com/oxhq/autolang/internal/universe"
	"github.com/oxhq/autolang/internal/value"
)

// Interp evaluates one program against a Universe. Result holds the
// program's final value, used by config-mode evaluation (spec §6's
// eval_config). Out is where the print builtin writes; it defaults to
// os.Stdout but callers embedding the interpreter (tests, a future
// shell) can redirect it.
type Interp struct {
	U      *universe.Universe
	Result value.Value
	Out    io.Writer
}

// New returns an interpreter with a fresh Universe, printing to stdout.
func New() *Interp { return &Interp{U: universe.New(), Out: os.Stdout} }

// controlSignal carries a `return` unwind up through block/statement
// evaluation without using Go panics for ordinary control flow.
type controlSignal struct {
	isReturn bool
	value    value.Value
}

// Run evaluates program and returns its display-form result, or the
// first evaluation error encountered (evaluation fails fast, per the
// error-handling policy).
func Run(program *ast.Program) (string, error) {
	it := New()
	v, err := it.Eval(program)
	if err != nil {
		return "", err
	}
	return v.Display(), nil
}

// Eval evaluates the whole program, returning its block's value.
func (it *Interp) Eval(program *ast.Program) (value.Value, error) {
	v, sig, err := it.evalBlock(program.Body)
	if err != nil {
		return value.Nil, err
	}
	if sig.isReturn {
		it.Result = sig.value
		return sig.value, nil
	}
	it.Result = v
	return v, nil
}

func evalErr(format string, args ...any) error { return fmt.Errorf(format, args...) }

func (it *Interp) evalBlock(b *ast.Block) (value.Value, controlSignal, error) {
	it.U.EnterScope()
	defer it.U.LeaveScope()

	for _, s := range b.Stmts {
		sig, err := it.evalStmt(s)
		if err != nil {
			return value.Nil, controlSignal{}, err
		}
		if sig.isReturn {
			return value.Nil, sig, nil
		}
	}
	if b.Result == nil {
		return value.Void, controlSignal{}, nil
	}
	v, err := it.evalExpr(b.Result)
	return v, controlSignal{}, err
}

func (it *Interp) evalStmt(s ast.Stmt) (controlSignal, error) {
	switch n := s.(type) {
	case *ast.LetStmt:
		v, err := it.evalExpr(n.Value)
		if err != nil {
			return controlSignal{}, err
		}
		it.U.Define(n.Name, v)
		return controlSignal{}, nil
	case *ast.AssignStmt:
		v, err := it.evalExpr(n.Value)
		if err != nil {
			return controlSignal{}, err
		}
		switch target := n.Target.(type) {
		case *ast.Ident:
			it.U.Define(target.Name, v)
			return controlSignal{}, nil
		case *ast.FieldAccess:
			if err := it.evalFieldAssign(target, v); err != nil {
				return controlSignal{}, err
			}
			return controlSignal{}, nil
		default:
			return controlSignal{}, evalErr("assignment target must be an identifier or field access")
		}
	case *ast.ExprStmt:
		_, err := it.evalExpr(n.X)
		return controlSignal{}, err
	case *ast.ReturnStmt:
		var v value.Value = value.Void
		if n.Value != nil {
			var err error
			v, err = it.evalExpr(n.Value)
			if err != nil {
				return controlSignal{}, err
			}
		}
		return controlSignal{isReturn: true, value: v}, nil
	case *ast.ForStmt:
		return it.evalFor(n)
	case *ast.WhileStmt:
		return it.evalWhile(n)
	case *ast.LoopStmt:
		return it.evalLoop(n)
	case *ast.FuncDecl:
		it.U.Define(n.Name, value.Fn(it.makeClosure(n)))
		return controlSignal{}, nil
	default:
		return controlSignal{}, evalErr("unsupported statement %T", s)
	}
}

func (it *Interp) makeClosure(fn *ast.FuncDecl) value.ExtFn {
	return func(args []value.Value) (value.Value, error) {
		it.U.EnterScope()
		defer it.U.LeaveScope()
		for i, p := range fn.Params {
			var v value.Value = value.Nil
			if i < len(args) {
				v = args[i]
			}
			it.U.Define(p.Name, v)
		}
		v, sig, err := it.evalBlockNoScope(fn.Body)
		if err != nil {
			return value.Nil, err
		}
		if sig.isReturn {
			return sig.value, nil
		}
		return v, nil
	}
}

// evalBlockNoScope evaluates a block in the caller's already-pushed
// scope, used for function bodies so parameters and body locals share one
// frame.
func (it *Interp) evalBlockNoScope(b *ast.Block) (value.Value, controlSignal, error) {
	for _, s := range b.Stmts {
		sig, err := it.evalStmt(s)
		if err != nil {
			return value.Nil, controlSignal{}, err
		}
		if sig.isReturn {
			return value.Nil, sig, nil
		}
	}
	if b.Result == nil {
		return value.Void, controlSignal{}, nil
	}
	v, err := it.evalExpr(b.Result)
	return v, controlSignal{}, err
}

func (it *Interp) evalFor(n *ast.ForStmt) (controlSignal, error) {
	iterable, err := it.evalExpr(n.Iterable)
	if err != nil {
		return controlSignal{}, err
	}
	if iterable.Kind() != value.KindArray {
		return controlSignal{}, evalErr("for loop requires an array, got %v", iterable.Kind())
	}
	for i, elem := range iterable.Array() {
		it.U.EnterScope()
		if n.IndexVar != "" {
			it.U.Define(n.IndexVar, value.Int(int32(i)))
		}
		it.U.Define(n.ElemVar, elem)
		_, sig, err := it.evalBlockNoScope(n.Body)
		it.U.LeaveScope()
		if err != nil {
			return controlSignal{}, err
		}
		if sig.isReturn {
			return sig, nil
		}
	}
	return controlSignal{}, nil
}

func (it *Interp) evalWhile(n *ast.WhileStmt) (controlSignal, error) {
	for {
		cond, err := it.evalExpr(n.Cond)
		if err != nil {
			return controlSignal{}, err
		}
		if cond.Kind() != value.KindBool || !cond.Bool() {
			break
		}
		it.U.EnterScope()
		_, sig, err := it.evalBlockNoScope(n.Body)
		it.U.LeaveScope()
		if err != nil {
			return controlSignal{}, err
		}
		if sig.isReturn {
			return sig, nil
		}
	}
	return controlSignal{}, nil
}

func (it *Interp) evalLoop(n *ast.LoopStmt) (controlSignal, error) {
	for {
		it.U.EnterScope()
		_, sig, err := it.evalBlockNoScope(n.Body)
		it.U.LeaveScope()
		if err != nil {
			return controlSignal{}, err
		}
		if sig.isReturn {
			return sig, nil
		}
	}
}

func (it *Interp) evalExpr(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return value.Int(n.Value), nil
	case *ast.DoubleLit:
		return value.Double(n.Value), nil
	case *ast.BoolLit:
		return value.Bool(n.Value), nil
	case *ast.StrLit:
		return value.Str(n.Value), nil
	case *ast.NilLit:
		return value.Nil, nil
	case *ast.NullLit:
		return value.Null, nil
	case *ast.VoidLit:
		return value.Void, nil
	case *ast.Ident:
		v, ok := it.U.Lookup(n.Name)
		if !ok {
			return value.Nil, evalErr("undefined name %q", n.Name)
		}
		return v, nil
	case *ast.ArrayLit:
		elems := make([]value.Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := it.evalExpr(el)
			if err != nil {
				return value.Nil, err
			}
			elems[i] = v
		}
		return value.Array(elems), nil
	case *ast.ObjLit:
		obj := value.NewObj()
		for _, entry := range n.Entries {
			v, err := it.evalExpr(entry.Value)
			if err != nil {
				return value.Nil, err
			}
			obj.Set(value.StrKey(entry.Key), v)
		}
		return value.ObjVal(obj), nil
	case *ast.BinOp:
		return it.evalBinOp(n)
	case *ast.UnOp:
		return it.evalUnOp(n)
	case *ast.FieldAccess:
		return it.evalFieldAccess(n)
	case *ast.Call:
		return it.evalCall(n)
	case *ast.If:
		return it.evalIf(n)
	case *ast.When:
		return it.evalWhen(n)
	case *ast.Block:
		v, sig, err := it.evalBlock(n)
		if err != nil {
			return value.Nil, err
		}
		if sig.isReturn {
			return sig.value, nil
		}
		return v, nil
	case *ast.BorrowExpr:
		return it.evalExpr(n.Target)
	case *ast.NodeLit:
		return it.evalNodeLit(n)
	default:
		return value.Nil, evalErr("unsupported expression %T", e)
	}
}

func (it *Interp) evalBinOp(n *ast.BinOp) (value.Value, error) {
	l, err := it.evalExpr(n.Left)
	if err != nil {
		return value.Nil, err
	}
	switch n.Op {
	case "&&":
		if l.Kind() != value.KindBool {
			return value.Nil, evalErr("operand of && must be a bool, got %v", l.Kind())
		}
		if !l.Bool() {
			return value.Bool(false), nil
		}
		r, err := it.evalExpr(n.Right)
		if err != nil {
			return value.Nil, err
		}
		if r.Kind() != value.KindBool {
			return value.Nil, evalErr("operand of && must be a bool, got %v", r.Kind())
		}
		return value.Bool(r.Bool()), nil
	case "||":
		if l.Kind() != value.KindBool {
			return value.Nil, evalErr("operand of || must be a bool, got %v", l.Kind())
		}
		if l.Bool() {
			return value.Bool(true), nil
		}
		r, err := it.evalExpr(n.Right)
		if err != nil {
			return value.Nil, err
		}
		if r.Kind() != value.KindBool {
			return value.Nil, evalErr("operand of || must be a bool, got %v", r.Kind())
		}
		return value.Bool(r.Bool()), nil
	}

	r, err := it.evalExpr(n.Right)
	if err != nil {
		return value.Nil, err
	}

	switch n.Op {
	case "==":
		return value.Bool(l.Equal(r)), nil
	case "!=":
		return value.Bool(!l.Equal(r)), nil
	}

	if l.Kind() == value.KindStr && r.Kind() == value.KindStr {
		switch n.Op {
		case "+":
			return value.Str(l.Str() + r.Str()), nil
		case "<":
			return value.Bool(l.Str() < r.Str()), nil
		case "<=":
			return value.Bool(l.Str() <= r.Str()), nil
		case ">":
			return value.Bool(l.Str() > r.Str()), nil
		case ">=":
			return value.Bool(l.Str() >= r.Str()), nil
		default:
			return value.Nil, evalErr("unsupported string operator %q", n.Op)
		}
	}

	lf, lok := numericOperand(l)
	rf, rok := numericOperand(r)
	if !lok || !rok {
		return value.Nil, evalErr("operands of %q must be numbers, got %v and %v", n.Op, l.Kind(), r.Kind())
	}

	prefer := l
	if l.Kind() != r.Kind() {
		prefer = value.Double(0)
	}

	switch n.Op {
	case "+":
		return numericResult(prefer, lf+rf), nil
	case "-":
		return numericResult(prefer, lf-rf), nil
	case "*":
		return numericResult(prefer, lf*rf), nil
	case "/":
		if rf == 0 {
			return value.Nil, evalErr("division by zero")
		}
		return numericResult(prefer, lf/rf), nil
	case "<":
		return value.Bool(lf < rf), nil
	case "<=":
		return value.Bool(lf <= rf), nil
	case ">":
		return value.Bool(lf > rf), nil
	case ">=":
		return value.Bool(lf >= rf), nil
	default:
		return value.Nil, evalErr("unsupported operator %q", n.Op)
	}
}

// numericOperand extracts a float64 view of any numeric Value kind, for
// operator evaluation uniform across Int/Uint/Float/Double/USize.
func numericOperand(v value.Value) (float64, bool) {
	switch v.Kind() {
	case value.KindInt:
		return float64(v.Int()), true
	case value.KindUint:
		return float64(v.Uint()), true
	case value.KindFloat:
		return float64(v.Float()), true
	case value.KindDouble:
		return v.Double(), true
	case value.KindUSize:
		return float64(v.USize()), true
	default:
		return 0, false
	}
}

// numericResult rebuilds a Value of the same numeric kind as prefer,
// defaulting to Double when prefer isn't itself numeric (mixed-kind
// arithmetic widens to Double).
func numericResult(prefer value.Value, f float64) value.Value {
	switch prefer.Kind() {
	case value.KindInt:
		return value.Int(int32(f))
	case value.KindUint:
		return value.Uint(uint32(f))
	case value.KindFloat:
		return value.Float(float32(f))
	case value.KindUSize:
		return value.USize(uint64(f))
	default:
		return value.Double(f)
	}
}

func (it *Interp) evalUnOp(n *ast.UnOp) (value.Value, error) {
	v, err := it.evalExpr(n.Operand)
	if err != nil {
		return value.Nil, err
	}
	switch n.Op {
	case "!":
		if v.Kind() != value.KindBool {
			return value.Nil, evalErr("operand of ! must be a bool, got %v", v.Kind())
		}
		return value.Bool(!v.Bool()), nil
	case "-":
		f, ok := numericOperand(v)
		if !ok {
			return value.Nil, evalErr("operand of unary - must be a number, got %v", v.Kind())
		}
		return numericResult(v, -f), nil
	default:
		return value.Nil, evalErr("unsupported unary operator %q", n.Op)
	}
}

func (it *Interp) evalFieldAccess(n *ast.FieldAccess) (value.Value, error) {
	recv, err := it.evalExpr(n.Recv)
	if err != nil {
		return value.Nil, err
	}
	switch recv.Kind() {
	case value.KindObj:
		v, ok := recv.Obj().Get(value.StrKey(n.Name))
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case value.KindInstance:
		v, ok := recv.Instance().Fields.Get(value.StrKey(n.Name))
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	case value.KindNode:
		nd, ok := recv.Node().(*atomtree.Node)
		if !ok {
			return value.Nil, evalErr("field access on unsupported node type")
		}
		v, ok := nd.Prop(value.StrKey(n.Name))
		if !ok {
			return value.Nil, nil
		}
		return v, nil
	default:
		return value.Nil, evalErr("cannot access field %q on %v", n.Name, recv.Kind())
	}
}

// evalFieldAssign stores v at n.Recv's n.Name field, the target side of
// `o.z = 1`. Obj, Instance, and Node receivers are all mutated through
// the pointer already held by recv, so no re-Define of the receiver
// binding is needed afterward.
func (it *Interp) evalFieldAssign(n *ast.FieldAccess, v value.Value) error {
	recv, err := it.evalExpr(n.Recv)
	if err != nil {
		return err
	}
	switch recv.Kind() {
	case value.KindObj:
		recv.Obj().Set(value.StrKey(n.Name), v)
		return nil
	case value.KindInstance:
		recv.Instance().Fields.Set(value.StrKey(n.Name), v)
		return nil
	case value.KindNode:
		nd, ok := recv.Node().(*atomtree.Node)
		if !ok {
			return evalErr("field assignment on unsupported node type")
		}
		nd.SetProp(value.StrKey(n.Name), v)
		return nil
	default:
		return evalErr("cannot assign field %q on %v", n.Name, recv.Kind())
	}
}

func (it *Interp) evalCall(n *ast.Call) (value.Value, error) {
	ident, isIdent := n.Callee.(*ast.Ident)
	if isIdent {
		if _, shadowed := it.U.Lookup(ident.Name); !shadowed {
			if builtin, ok := builtins[ident.Name]; ok {
				args, err := it.evalArgsPositional(n.Args)
				if err != nil {
					return value.Nil, err
				}
				return builtin(it, args)
			}
		}
	}
	callee, err := it.evalExpr(n.Callee)
	if err != nil {
		return value.Nil, err
	}
	if callee.Kind() != value.KindExtFn {
		return value.Nil, evalErr("call target is not callable")
	}
	args, err := it.evalArgsPositional(n.Args)
	if err != nil {
		return value.Nil, err
	}
	return callee.ExtFn()(args)
}

func (it *Interp) evalArgsPositional(args []ast.Arg) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := it.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (it *Interp) evalIf(n *ast.If) (value.Value, error) {
	cond, err := it.evalExpr(n.Cond)
	if err != nil {
		return value.Nil, err
	}
	if cond.Kind() != value.KindBool {
		return value.Nil, evalErr("if condition must be a bool, got %v", cond.Kind())
	}
	if cond.Bool() {
		v, sig, err := it.evalBlock(n.Then)
		if err != nil || sig.isReturn {
			return sig.value, err
		}
		return v, nil
	}
	if n.Else == nil {
		return value.Void, nil
	}
	v, sig, err := it.evalBlock(n.Else)
	if err != nil || sig.isReturn {
		return sig.value, err
	}
	return v, nil
}

func (it *Interp) evalWhen(n *ast.When) (value.Value, error) {
	scrutinee, err := it.evalExpr(n.Scrutinee)
	if err != nil {
		return value.Nil, err
	}
	for _, arm := range n.Arms {
		if arm.IsElse {
			v, sig, err := it.evalBlock(arm.Body)
			if err != nil || sig.isReturn {
				return sig.value, err
			}
			return v, nil
		}
		pat, err := it.evalExpr(arm.Pattern)
		if err != nil {
			return value.Nil, err
		}
		if scrutinee.Equal(pat) {
			v, sig, err := it.evalBlock(arm.Body)
			if err != nil || sig.isReturn {
				return sig.value, err
			}
			return v, nil
		}
	}
	return value.Void, nil
}

func (it *Interp) evalNodeLit(n *ast.NodeLit) (value.Value, error) {
	nd := atomtree.New(n.Name)
	if n.HasID {
		nd.SetID(n.ID)
	}
	for _, a := range n.Args {
		v, err := it.evalExpr(a.Value)
		if err != nil {
			return value.Nil, err
		}
		nd.AppendArg(atomtree.Arg{Name: a.Name, Val: v})
	}
	for _, p := range n.Props {
		v, err := it.evalExpr(p.Value)
		if err != nil {
			return value.Nil, err
		}
		nd.SetProp(value.StrKey(p.Key), v)
	}
	for _, k := range n.Kids {
		v, err := it.evalExpr(k)
		if err != nil {
			return value.Nil, err
		}
		if v.Kind() != value.KindNode {
			return value.Nil, evalErr("node literal child must evaluate to a node")
		}
		child, ok := v.Node().(*atomtree.Node)
		if !ok {
			return value.Nil, evalErr("node literal child has unsupported node type")
		}
		nd.Kids().Append(child)
	}
	return value.NodeVal(nd), nil
}
