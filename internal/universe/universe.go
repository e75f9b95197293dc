// Package universe implements the scope tree, type registry, Atom merge
// cache, and VM-ref arena shared by the interpreter and the transpile
// emitters.
package universe

import (
	"fmt"

	"github.com/oxhq/autolang/internal/atomtree"
	"github.com/oxhq/autolang/internal/value"
)

// TypeDecl is a minimal type declaration record: a name plus its method
// table, keyed by method name, resolved by the interpreter's method
// dispatch.
type TypeDecl struct {
	Name    string
	Methods map[string]value.Value
}

type scope struct {
	parent *scope
	vars   map[string]value.Value
	vrefs  []int // vmref ids born in this scope
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]value.Value)}
}

// Universe is the shared environment: a scope stack, a type registry, an
// Atom merge cache, and a VM-ref arena for opaque host objects (open file
// handles and similar).
type Universe struct {
	top   *scope
	types map[string]*TypeDecl
	merge *atomtree.Node

	vrefs    map[int]any
	nextVref int
}

// New returns a Universe with one root scope.
func New() *Universe {
	return &Universe{
		top:   newScope(nil),
		types: make(map[string]*TypeDecl),
		vrefs: make(map[int]any),
	}
}

// EnterScope pushes a new child scope.
func (u *Universe) EnterScope() { u.top = newScope(u.top) }

// LeaveScope pops the current scope, dropping every VM-ref born in it.
func (u *Universe) LeaveScope() {
	if u.top.parent == nil {
		return
	}
	for _, id := range u.top.vrefs {
		delete(u.vrefs, id)
	}
	u.top = u.top.parent
}

// Define binds name in the current scope.
func (u *Universe) Define(name string, v value.Value) { u.top.vars[name] = v }

// Lookup walks from the current scope outward; the first match wins.
func (u *Universe) Lookup(name string) (value.Value, bool) {
	for s := u.top; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return value.Nil, false
}

// DefineType registers a type declaration.
func (u *Universe) DefineType(decl *TypeDecl) { u.types[decl.Name] = decl }

// LookupType resolves a type declaration by name.
func (u *Universe) LookupType(name string) (*TypeDecl, bool) {
	t, ok := u.types[name]
	return t, ok
}

// MergeAtom overlays atom onto the merge cache; later overlays win on
// conflicting keys/props. The first call seeds the cache outright.
func (u *Universe) MergeAtom(atom *atomtree.Node) {
	if u.merge == nil {
		u.merge = atom
		return
	}
	u.merge = overlay(u.merge, atom)
}

// MergedAtom returns the current merge-cache root, or nil if nothing has
// been merged yet.
func (u *Universe) MergedAtom() *atomtree.Node { return u.merge }

func overlay(base, top *atomtree.Node) *atomtree.Node {
	out := atomtree.New(top.Name())
	if id, ok := top.ID(); ok {
		out.SetID(id)
	} else if id, ok := base.ID(); ok {
		out.SetID(id)
	}
	for _, a := range base.Args() {
		out.AppendArg(a)
	}
	for _, a := range top.Args() {
		out.AppendArg(a)
	}
	base.Props().Iter(func(k value.ValueKey, v value.Value) bool {
		out.SetProp(k, v)
		return true
	})
	top.Props().Iter(func(k value.ValueKey, v value.Value) bool {
		out.SetProp(k, v)
		return true
	})
	return out
}

// AddVmRef boxes an opaque host value and returns a never-reused,
// monotonically increasing id. The ref is released automatically when the
// current scope (its birth scope) is left.
func (u *Universe) AddVmRef(boxed any) int {
	id := u.nextVref
	u.nextVref++
	u.vrefs[id] = boxed
	u.top.vrefs = append(u.top.vrefs, id)
	return id
}

// GetVmRef resolves a live VM-ref id.
func (u *Universe) GetVmRef(id int) (any, bool) {
	v, ok := u.vrefs[id]
	return v, ok
}

// DropVmRef releases a VM-ref explicitly, e.g. via a `close` built-in.
func (u *Universe) DropVmRef(id int) { delete(u.vrefs, id) }

// ResolveMeta implements atomtree.Resolver by looking up a lazy body's id
// in the merge cache.
func (u *Universe) ResolveMeta(id atomtree.MetaID) (*atomtree.Node, error) {
	if u.merge == nil {
		return nil, fmt.Errorf("universe: no atom merged, cannot resolve %q", id)
	}
	if nid, ok := u.merge.ID(); ok && atomtree.MetaID(nid) == id {
		return u.merge, nil
	}
	found, err := u.merge.Kids().Resolve(value.StrKey(string(id)), u)
	if err != nil {
		return nil, err
	}
	if found.Kind() != value.KindNode {
		return nil, fmt.Errorf("universe: meta id %q did not resolve to a node", id)
	}
	n, ok := found.Node().(*atomtree.Node)
	if !ok {
		return nil, fmt.Errorf("universe: meta id %q resolved to an incompatible node type", id)
	}
	return n, nil
}
