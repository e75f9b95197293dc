package value

import "strings"

// ValueKey is the restricted key type for Obj: a string, int, or bool.
// Ordering is lexicographic on the textual form.
type ValueKey struct {
	kind KeyKind
	s    string
	i    int64
	b    bool
}

type KeyKind int

const (
	KeyStr KeyKind = iota
	KeyInt
	KeyBool
)

func StrKey(s string) ValueKey { return ValueKey{kind: KeyStr, s: s} }
func IntKey(i int64) ValueKey  { return ValueKey{kind: KeyInt, i: i} }
func BoolKey(b bool) ValueKey  { return ValueKey{kind: KeyBool, b: b} }

// KeyOf converts a scalar Value (Str, Int, Bool) into a ValueKey; any
// other kind converts to its display text as a Str key.
func KeyOf(v Value) ValueKey {
	switch v.Kind() {
	case KindStr:
		return StrKey(v.Str())
	case KindInt:
		return IntKey(int64(v.Int()))
	case KindBool:
		return BoolKey(v.Bool())
	default:
		return StrKey(v.Display())
	}
}

func (k ValueKey) Kind() KeyKind { return k.kind }

// Text is the lexicographic sort form.
func (k ValueKey) Text() string {
	switch k.kind {
	case KeyStr:
		return k.s
	case KeyInt:
		return strconvItoa(k.i)
	case KeyBool:
		if k.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func strconvItoa(i int64) string {
	var b strings.Builder
	if i < 0 {
		b.WriteByte('-')
		i = -i
	}
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append(digits, byte('0'+i%10))
		i /= 10
	}
	for j := len(digits) - 1; j >= 0; j-- {
		b.WriteByte(digits[j])
	}
	return b.String()
}

func (k ValueKey) Less(o ValueKey) bool { return k.Text() < o.Text() }

func (k ValueKey) Equal(o ValueKey) bool {
	return k.kind == o.kind && k.Text() == o.Text()
}

// AsValue converts the key back into a display-equivalent Value, used when
// iterating props/Obj entries that need to round-trip through Value (e.g.
// Pair construction).
func (k ValueKey) AsValue() Value {
	switch k.kind {
	case KeyInt:
		return Int(int32(k.i))
	case KeyBool:
		return Bool(k.b)
	default:
		return Str(k.s)
	}
}

// Obj is an insertion-ordered map from ValueKey to Value. First insert
// wins position; overwriting an existing key keeps its original slot.
type Obj struct {
	keys []ValueKey
	idx  map[string]int // Text() -> index into keys/vals
	vals []Value
}

// NewObj returns an empty ordered object.
func NewObj() *Obj {
	return &Obj{idx: make(map[string]int)}
}

// Set inserts or overwrites key, preserving the original position on
// overwrite.
func (o *Obj) Set(key ValueKey, v Value) {
	tk := key.Text()
	if i, ok := o.idx[tk]; ok {
		o.vals[i] = v
		return
	}
	o.idx[tk] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value at key, if present.
func (o *Obj) Get(key ValueKey) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.idx[key.Text()]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

// GetOr returns the value at key, or def if absent.
func (o *Obj) GetOr(key ValueKey, def Value) Value {
	if v, ok := o.Get(key); ok {
		return v
	}
	return def
}

// GetIntOf returns the int value at key, or def if absent or not an Int
// (type-mismatched access never fails).
func (o *Obj) GetIntOf(key ValueKey, def int32) int32 {
	v, ok := o.Get(key)
	if !ok || v.Kind() != KindInt {
		return def
	}
	return v.Int()
}

// Remove deletes key and closes the gap in iteration order.
func (o *Obj) Remove(key ValueKey) {
	tk := key.Text()
	i, ok := o.idx[tk]
	if !ok {
		return
	}
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.vals = append(o.vals[:i], o.vals[i+1:]...)
	delete(o.idx, tk)
	for k, v := range o.idx {
		if v > i {
			o.idx[k] = v - 1
		}
	}
}

// Len reports the number of entries.
func (o *Obj) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Iter calls fn for each entry in insertion order. Stops early if fn
// returns false.
func (o *Obj) Iter(fn func(key ValueKey, v Value) bool) {
	if o == nil {
		return
	}
	for i, k := range o.keys {
		if !fn(k, o.vals[i]) {
			return
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (o *Obj) Keys() []ValueKey {
	if o == nil {
		return nil
	}
	cp := make([]ValueKey, len(o.keys))
	copy(cp, o.keys)
	return cp
}

// Clone returns a shallow copy preserving order.
func (o *Obj) Clone() *Obj {
	if o == nil {
		return NewObj()
	}
	c := &Obj{
		keys: append([]ValueKey(nil), o.keys...),
		vals: append([]Value(nil), o.vals...),
		idx:  make(map[string]int, len(o.idx)),
	}
	for k, v := range o.idx {
		c.idx[k] = v
	}
	return c
}

// Merge overlays other onto o: right (other) wins on key conflict, but a
// pre-existing key retains its left-hand position. Returns a new
// Obj; o and other are untouched.
func (o *Obj) Merge(other *Obj) *Obj {
	out := o.Clone()
	other.Iter(func(k ValueKey, v Value) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// Inc adds delta to the int value at key, creating it with a base of 0 if
// absent.
func (o *Obj) Inc(key ValueKey, delta int32) {
	cur := o.GetIntOf(key, 0)
	o.Set(key, Int(cur+delta))
}

// Dec subtracts delta from the int value at key, creating it with a base
// of 0 if absent.
func (o *Obj) Dec(key ValueKey, delta int32) {
	cur := o.GetIntOf(key, 0)
	o.Set(key, Int(cur-delta))
}

// Reset sets the int value at key back to 0.
func (o *Obj) Reset(key ValueKey) {
	o.Set(key, Int(0))
}

// Equal reports whether o and other hold the same key/value pairs (order
// does not affect equality, only iteration does).
func (o *Obj) Equal(other *Obj) bool {
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Iter(func(k ValueKey, v Value) bool {
		ov, ok := other.Get(k)
		if !ok || !v.Equal(ov) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Display renders the Atom object textual form: `{k1: v1; k2: v2}`.
func (o *Obj) Display() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	o.Iter(func(k ValueKey, v Value) bool {
		if !first {
			b.WriteString("; ")
		}
		first = false
		b.WriteString(displayKey(k))
		b.WriteString(": ")
		b.WriteString(v.QuotedDisplay())
		return true
	})
	b.WriteByte('}')
	return b.String()
}

func displayKey(k ValueKey) string {
	if k.kind == KeyStr && isBareIdent(k.s) {
		return k.s
	}
	return quoteString(k.Text())
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
