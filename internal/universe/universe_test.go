package universe

import (
	"testing"

	"github.com/oxhq/autolang/internal/atomtree"
	"github.com/oxhq/autolang/internal/value"
)

func TestDefineAndLookupCrossesScopes(t *testing.T) {
	u := New()
	u.Define("x", value.Int(1))
	u.EnterScope()
	if v, ok := u.Lookup("x"); !ok || v.Int() != 1 {
		t.Fatalf("expected to see outer binding from inner scope")
	}
	u.Define("x", value.Int(2))
	if v, _ := u.Lookup("x"); v.Int() != 2 {
		t.Fatalf("expected inner shadow to win")
	}
	u.LeaveScope()
	if v, _ := u.Lookup("x"); v.Int() != 1 {
		t.Fatalf("expected outer binding restored after leaving scope, got %v", v.Display())
	}
}

func TestLeaveScopeAtTopIsNoop(t *testing.T) {
	u := New()
	u.Define("x", value.Int(1))
	u.LeaveScope()
	if v, ok := u.Lookup("x"); !ok || v.Int() != 1 {
		t.Fatalf("leaving the top scope must not discard bindings")
	}
}

func TestVmRefReleasedOnScopeExit(t *testing.T) {
	u := New()
	u.EnterScope()
	id := u.AddVmRef("handle")
	if _, ok := u.GetVmRef(id); !ok {
		t.Fatalf("expected vmref to resolve inside its owning scope")
	}
	u.LeaveScope()
	if _, ok := u.GetVmRef(id); ok {
		t.Fatalf("expected vmref to be released once its owning scope exits")
	}
}

func TestMergeAtomOverlaysLaterWinsOnConflict(t *testing.T) {
	u := New()
	base := atomtree.New("root")
	base.SetProp(value.StrKey("name"), value.Str("first"))
	u.MergeAtom(base)

	top := atomtree.New("root")
	top.SetProp(value.StrKey("name"), value.Str("second"))
	u.MergeAtom(top)

	merged := u.MergedAtom()
	v, ok := merged.Prop(value.StrKey("name"))
	if !ok || v.Str() != "second" {
		t.Fatalf("expected later overlay to win, got %v", v.Display())
	}
}

func TestDefineTypeAndLookupType(t *testing.T) {
	u := New()
	decl := &TypeDecl{Name: "Point", Methods: map[string]value.Value{}}
	u.DefineType(decl)
	got, ok := u.LookupType("Point")
	if !ok || got != decl {
		t.Fatalf("expected to look up the exact registered type decl")
	}
	if _, ok := u.LookupType("Missing"); ok {
		t.Fatalf("expected lookup of an undeclared type to fail")
	}
}
