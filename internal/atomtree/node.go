// Package atomtree implements the Atom tree markup: a Node is a named
// record with positional args, named properties, and ordered children,
// doubling as parser AST, config/template data, and transpiler
// intermediate form.
package atomtree

import (
	"strings"

	"github.com/oxhq/autolang/internal/value"
)

// MetaID is a lookup key into the Universe for a deferred (lazy) child or
// body. It is a lookup, not an owner — breaking the ownership cycle that
// two nodes sharing a lazy body would otherwise form.
type MetaID string

// Arg is one positional or named argument in a Node's arg list.
type Arg struct {
	Name string // empty for positional args
	Val  value.Value
}

// Node is one element of the Atom tree.
type Node struct {
	name string
	id   string // empty means no id
	hasID bool

	args []Arg
	props *value.Obj
	kids  *Kids
	text  string
	hasText bool
}

// New creates an empty, anonymous-unless-named node.
func New(name string) *Node {
	return &Node{name: name, props: value.NewObj(), kids: NewKids()}
}

func (n *Node) Name() string { return n.name }

func (n *Node) SetID(id string) { n.id, n.hasID = id, true }
func (n *Node) ID() (string, bool) { return n.id, n.hasID }

func (n *Node) SetText(t string) { n.text, n.hasText = t, true }
func (n *Node) Text() (string, bool) { return n.text, n.hasText }

// AppendArg appends a positional or named argument.
func (n *Node) AppendArg(a Arg) { n.args = append(n.args, a) }
func (n *Node) Args() []Arg     { return n.args }

// SetProp sets a property key:value declaration.
func (n *Node) SetProp(key value.ValueKey, v value.Value) { n.props.Set(key, v) }
func (n *Node) Prop(key value.ValueKey) (value.Value, bool) { return n.props.Get(key) }
func (n *Node) Props() *value.Obj { return n.props }

// Kids returns the node's child storage, creating it if absent.
func (n *Node) Kids() *Kids {
	if n.kids == nil {
		n.kids = NewKids()
	}
	return n.kids
}

// ChildByKey looks up a child by its key, resolving it through r if it is
// lazy. A nil Resolver with a lazy child produces an Error value rather
// than panicking.
func (n *Node) ChildByKey(key value.ValueKey, r Resolver) (value.Value, error) {
	return n.Kids().Resolve(key, r)
}

// AtomEqual implements value.NodeLike: two nodes are equal iff name, id,
// props, args, and kids sequences are all equal.
func (n *Node) AtomEqual(other value.NodeLike) bool {
	o, ok := other.(*Node)
	if !ok || o == nil {
		return false
	}
	if n.name != o.name || n.hasID != o.hasID || n.id != o.id {
		return false
	}
	if len(n.args) != len(o.args) {
		return false
	}
	for i := range n.args {
		if n.args[i].Name != o.args[i].Name || !n.args[i].Val.Equal(o.args[i].Val) {
			return false
		}
	}
	if !n.props.Equal(o.props) {
		return false
	}
	return n.kids.equal(o.kids)
}

// AtomString implements value.NodeLike via ToAstr.
func (n *Node) AtomString() string { return n.ToAstr() }

// ToAstr serializes the node to the Atom textual form:
//
//	name [id] (arg, ...) { prop: value; ...; child1; child2 }
//
// Items inside `{ ... }` are separated by "; " with no trailing
// separator; strings are double-quoted.
func (n *Node) ToAstr() string {
	var b strings.Builder
	b.WriteString(n.name)
	if n.hasID {
		b.WriteString(" [")
		b.WriteString(n.id)
		b.WriteString("]")
	}
	if len(n.args) > 0 {
		b.WriteString(" (")
		for i, a := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			if a.Name != "" {
				b.WriteString(a.Name)
				b.WriteString(": ")
			}
			b.WriteString(a.Val.QuotedDisplay())
		}
		b.WriteString(")")
	}

	var items []string
	n.props.Iter(func(k value.ValueKey, v value.Value) bool {
		items = append(items, propItem(k, v))
		return true
	})
	if n.hasText {
		items = append(items, quoteAtomString(n.text))
	}
	n.kids.iterEager(func(key value.ValueKey, c *Node) bool {
		items = append(items, c.ToAstr())
		return true
	})

	if len(items) > 0 {
		b.WriteString(" { ")
		b.WriteString(strings.Join(items, "; "))
		b.WriteString(" }")
	}
	return b.String()
}

func propItem(k value.ValueKey, v value.Value) string {
	name := k.Text()
	if k.Kind() == value.KeyStr && isBareIdent(name) {
		return name + ": " + v.QuotedDisplay()
	}
	return quoteAtomString(name) + ": " + v.QuotedDisplay()
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if i > 0 && !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

func quoteAtomString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// CallLike is the minimal view of a call node that FromCall needs. No
// type in internal/ast implements it; callers supply their own adapter.
type CallLike interface {
	CalleeName() string
	PositionalArgs() []value.Value
	NamedArgs() map[string]value.Value
}

// FromCall constructs a Node from a parsed call expression, in argument
// order: positional args first (in source order), then named args sorted
// by name for determinism.
func FromCall(call CallLike) *Node {
	n := New(call.CalleeName())
	for _, v := range call.PositionalArgs() {
		n.AppendArg(Arg{Val: v})
	}
	named := call.NamedArgs()
	for _, k := range value.SortedKeys(named) {
		n.AppendArg(Arg{Name: k, Val: named[k]})
	}
	return n
}
