// Package value implements the polymorphic Value representation shared by
// the interpreter, the Atom tree, the incremental session's config-eval
// mode, and the transpile emitters. Every component boundary in this
// module speaks Value (or Node, which is a Value.Node unwrapped).
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the variant carried by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindNull
	KindVoid
	KindBool
	KindByte
	KindChar
	KindInt
	KindUint
	KindFloat
	KindDouble
	KindUSize
	KindStr
	KindCStr
	KindArray
	KindObj
	KindPair
	KindNode
	KindInstance
	KindError
	KindExtFn
	KindVmRef
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindUSize:
		return "usize"
	case KindStr:
		return "str"
	case KindCStr:
		return "cstr"
	case KindArray:
		return "array"
	case KindObj:
		return "obj"
	case KindPair:
		return "pair"
	case KindNode:
		return "node"
	case KindInstance:
		return "instance"
	case KindError:
		return "error"
	case KindExtFn:
		return "extfn"
	case KindVmRef:
		return "vmref"
	default:
		return "unknown"
	}
}

// ExtFn is an opaque host-side callable exposed to AutoLang code.
type ExtFn func(args []Value) (Value, error)

// Instance is a typed record: a type tag plus an ordered field map.
type Instance struct {
	Type   string
	Fields *Obj
}

// Pair boxes a single key/value association (used by map-style iteration
// and destructuring).
type Pair struct {
	Key Value
	Val Value
}

// Value is a tagged union over every runtime/markup/config/template datum
// the core ever produces. The zero Value is KindNil.
//
// Exactly one of the typed fields is meaningful for a given Kind; callers
// must switch on Kind before reading a field. This mirrors a discriminated
// union without requiring an interface-boxed payload for the common
// scalar cases.
type Value struct {
	kind Kind

	b    bool
	i64  int64
	u64  uint64
	f32  float32
	f64  float64
	str  string // Str, CStr, Error payload
	arr  []Value
	obj  *Obj
	pair *Pair
	node NodeLike
	inst *Instance
	fn   ExtFn
	vref int
}

// Node is declared in this package as an opaque forward type; the full
// definition lives in package atomtree to avoid a Value<->Node import
// cycle. atomtree.Node satisfies this alias via NodeLike.
type Node = NodeLike

// NodeLike is the minimal surface Value needs from an Atom node: display
// and equality. package atomtree's *Node implements it.
type NodeLike interface {
	AtomString() string
	AtomEqual(other NodeLike) bool
}

// --- constructors ---

var (
	Nil  = Value{kind: KindNil}
	Null = Value{kind: KindNull}
	Void = Value{kind: KindVoid}
)

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Byte(b byte) Value      { return Value{kind: KindByte, u64: uint64(b)} }
func Char(r rune) Value      { return Value{kind: KindChar, i64: int64(r)} }
func Int(i int32) Value      { return Value{kind: KindInt, i64: int64(i)} }
func Uint(u uint32) Value    { return Value{kind: KindUint, u64: uint64(u)} }
func Float(f float32) Value  { return Value{kind: KindFloat, f32: f} }
func Double(f float64) Value { return Value{kind: KindDouble, f64: f} }
func USize(u uint64) Value   { return Value{kind: KindUSize, u64: u} }
func Str(s string) Value     { return Value{kind: KindStr, str: s} }

// CStr wraps s as a NUL-terminated string; the trailing NUL is added if
// absent so CStrPtr always returns a valid C string.
func CStr(s string) Value {
	if !strings.HasSuffix(s, "\x00") {
		s += "\x00"
	}
	return Value{kind: KindCStr, str: s}
}

func Array(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

func ObjVal(o *Obj) Value { return Value{kind: KindObj, obj: o} }

func PairVal(k, v Value) Value {
	return Value{kind: KindPair, pair: &Pair{Key: k, Val: v}}
}

func NodeVal(n NodeLike) Value { return Value{kind: KindNode, node: n} }

func InstanceVal(typ string, fields *Obj) Value {
	return Value{kind: KindInstance, inst: &Instance{Type: typ, Fields: fields}}
}

func Error(msg string) Value { return Value{kind: KindError, str: msg} }
func ErrorF(format string, args ...any) Value {
	return Value{kind: KindError, str: fmt.Sprintf(format, args...)}
}

func Fn(fn ExtFn) Value   { return Value{kind: KindExtFn, fn: fn} }
func VmRef(id int) Value  { return Value{kind: KindVmRef, vref: id} }

// --- accessors ---

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool   { return v.kind == KindNil }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) IsVoid() bool  { return v.kind == KindVoid }
func (v Value) IsError() bool { return v.kind == KindError }

// IsEmpty treats Nil, Null, and Void as interchangeably "empty" without
// making them equal (see Equal).
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNil, KindNull, KindVoid:
		return true
	case KindStr, KindCStr:
		return v.str == "" || v.str == "\x00"
	case KindArray:
		return len(v.arr) == 0
	case KindObj:
		return v.obj == nil || v.obj.Len() == 0
	default:
		return false
	}
}

func (v Value) Bool() bool       { return v.b }
func (v Value) Byte() byte       { return byte(v.u64) }
func (v Value) Char() rune       { return rune(v.i64) }
func (v Value) Int() int32       { return int32(v.i64) }
func (v Value) Uint() uint32     { return uint32(v.u64) }
func (v Value) Float() float32   { return v.f32 }
func (v Value) Double() float64  { return v.f64 }
func (v Value) USize() uint64    { return v.u64 }
func (v Value) Str() string      { return v.str }
func (v Value) CStrPtr() *byte {
	if v.str == "" {
		return nil
	}
	b := []byte(v.str)
	return &b[0]
}
func (v Value) Array() []Value { return v.arr }
func (v Value) Obj() *Obj      { return v.obj }
func (v Value) Pair() *Pair    { return v.pair }
func (v Value) Node() NodeLike { return v.node }
func (v Value) Instance() *Instance { return v.inst }
func (v Value) ErrMsg() string      { return v.str }
func (v Value) ExtFn() ExtFn        { return v.fn }
func (v Value) VmRefID() int        { return v.vref }

// Equal implements structural equality. Nil, Null, and Void are never
// equal to one another even though all three are "empty".
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil, KindNull, KindVoid:
		return true
	case KindBool:
		return v.b == o.b
	case KindByte, KindUint, KindUSize, KindVmRef:
		return v.u64 == o.u64 && v.vref == o.vref
	case KindChar, KindInt:
		return v.i64 == o.i64
	case KindFloat:
		return v.f32 == o.f32
	case KindDouble:
		return v.f64 == o.f64
	case KindStr, KindCStr, KindError:
		return v.str == o.str
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObj:
		return v.obj.Equal(o.obj)
	case KindPair:
		return v.pair.Key.Equal(o.pair.Key) && v.pair.Val.Equal(o.pair.Val)
	case KindNode:
		if v.node == nil || o.node == nil {
			return v.node == o.node
		}
		return v.node.AtomEqual(o.node)
	case KindInstance:
		return v.inst.Type == o.inst.Type && v.inst.Fields.Equal(o.inst.Fields)
	default:
		return false
	}
}

// Display renders the value's textual form, used both for `run`'s return
// value and for Atom prop serialization.
func (v Value) Display() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindByte:
		return strconv.FormatUint(v.u64, 10)
	case KindChar:
		return string(rune(v.i64))
	case KindInt:
		return strconv.FormatInt(v.i64, 10)
	case KindUint, KindUSize:
		return strconv.FormatUint(v.u64, 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindStr:
		return v.str
	case KindCStr:
		return strings.TrimSuffix(v.str, "\x00")
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.QuotedDisplay()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObj:
		return v.obj.Display()
	case KindPair:
		return v.pair.Key.Display() + ": " + v.pair.Val.Display()
	case KindNode:
		if v.node == nil {
			return "nil"
		}
		return v.node.AtomString()
	case KindInstance:
		return v.inst.Type + v.inst.Fields.Display()
	case KindError:
		return "error: " + v.str
	case KindExtFn:
		return "<extfn>"
	case KindVmRef:
		return fmt.Sprintf("<vmref#%d>", v.vref)
	default:
		return "<?>"
	}
}

// QuotedDisplay is Display except strings are double-quoted, matching the
// Atom textual-form array/object rendering rules.
func (v Value) QuotedDisplay() string {
	if v.kind == KindStr || v.kind == KindCStr {
		return quoteString(v.Display())
	}
	return v.Display()
}

func quoteString(s string) string {
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

// SortedKeys is a small helper for callers (such as atomtree.FromCall)
// that need stable iteration over a plain Go map without depending on
// Obj.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
