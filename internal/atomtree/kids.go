package atomtree

import "github.com/oxhq/autolang/internal/value"

// Resolver resolves a lazy MetaID reference into a concrete Node, looked
// up in the Universe. Implemented by internal/universe.Universe.
type Resolver interface {
	ResolveMeta(id MetaID) (*Node, error)
}

// kidKind tags whether a Kid is an eager inline Node or a lazy reference.
type kidKind int

const (
	kidEager kidKind = iota
	kidLazy
)

// Kid is either an eager Node or a lazy reference into the Universe.
type Kid struct {
	kind kidKind
	node *Node
	meta MetaID
}

func EagerKid(n *Node) Kid  { return Kid{kind: kidEager, node: n} }
func LazyKid(id MetaID) Kid { return Kid{kind: kidLazy, meta: id} }

func (k Kid) IsLazy() bool { return k.kind == kidLazy }

// Kids unifies the insertion-ordered map of ValueKey -> Kid plus an
// optional top-level lazy-body reference.
type Kids struct {
	keys []value.ValueKey
	idx  map[string]int
	vals []Kid

	lazyBody    MetaID
	hasLazyBody bool
}

// NewKids returns an empty Kids container.
func NewKids() *Kids {
	return &Kids{idx: make(map[string]int)}
}

// SetLazyBody records the node's top-level deferred body reference.
func (k *Kids) SetLazyBody(id MetaID) { k.lazyBody, k.hasLazyBody = id, true }

// LazyBody returns the deferred body reference, if any.
func (k *Kids) LazyBody() (MetaID, bool) { return k.lazyBody, k.hasLazyBody }

// Put inserts or overwrites the child at key, preserving position on
// overwrite, matching Obj's ordering contract: iteration order equals
// insertion order.
func (k *Kids) Put(key value.ValueKey, child Kid) {
	tk := key.Text()
	if i, ok := k.idx[tk]; ok {
		k.vals[i] = child
		return
	}
	k.idx[tk] = len(k.keys)
	k.keys = append(k.keys, key)
	k.vals = append(k.vals, child)
}

// PutEager is shorthand for Put(key, EagerKid(n)).
func (k *Kids) PutEager(key value.ValueKey, n *Node) { k.Put(key, EagerKid(n)) }

// Append adds an eager child keyed by its positional index, used by
// anonymous/positional children.
func (k *Kids) Append(n *Node) {
	k.PutEager(value.IntKey(int64(len(k.keys))), n)
}

// Len reports the number of children.
func (k *Kids) Len() int {
	if k == nil {
		return 0
	}
	return len(k.keys)
}

// Resolve returns the child at key as a concrete Node, resolving through
// r if lazy. Resolution failures surface as a value.Error result with a
// nil error, never a panic.
func (k *Kids) Resolve(key value.ValueKey, r Resolver) (value.Value, error) {
	i, ok := k.idx[key.Text()]
	if !ok {
		return value.Nil, nil
	}
	kid := k.vals[i]
	if kid.kind == kidEager {
		return value.NodeVal(kid.node), nil
	}
	if r == nil {
		return value.Error("cannot resolve lazy child: no resolver available"), nil
	}
	n, err := r.ResolveMeta(kid.meta)
	if err != nil {
		return value.Error("resolving lazy child: " + err.Error()), nil
	}
	return value.NodeVal(n), nil
}

// Iter visits every child key in insertion order, resolving lazy entries
// through r. fn returning false stops iteration early.
func (k *Kids) Iter(r Resolver, fn func(key value.ValueKey, v value.Value) bool) {
	if k == nil {
		return
	}
	for _, key := range k.keys {
		v, _ := k.Resolve(key, r)
		if !fn(key, v) {
			return
		}
	}
}

// iterEager visits only the eager children, in insertion order, used by
// ToAstr which never triggers lazy resolution during serialization.
func (k *Kids) iterEager(fn func(key value.ValueKey, n *Node) bool) {
	if k == nil {
		return
	}
	for i, key := range k.keys {
		if k.vals[i].kind == kidEager {
			if !fn(key, k.vals[i].node) {
				return
			}
		}
	}
}

func (k *Kids) equal(o *Kids) bool {
	if k.Len() != o.Len() {
		return false
	}
	if k == nil || o == nil {
		return k == o
	}
	if k.hasLazyBody != o.hasLazyBody || k.lazyBody != o.lazyBody {
		return false
	}
	for i, key := range k.keys {
		oi, ok := o.idx[key.Text()]
		if !ok {
			return false
		}
		a, b := k.vals[i], o.vals[oi]
		if a.kind != b.kind {
			return false
		}
		if a.kind == kidEager {
			if !a.node.AtomEqual(b.node) {
				return false
			}
		} else if a.meta != b.meta {
			return false
		}
	}
	return true
}
