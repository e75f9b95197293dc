package atomtree

import (
	"testing"

	"github.com/oxhq/autolang/internal/value"
)

func TestNodeToAstrWithNestedLabelledChild(t *testing.T) {
	root := New("root")
	root.SetProp(value.StrKey("name"), value.Str("hello"))

	exe := New("exe")
	exe.SetID("h")
	exe.SetProp(value.StrKey("dir"), value.Str("src"))
	exe.SetProp(value.StrKey("main"), value.Str("main.c"))
	root.Kids().Append(exe)

	got := root.ToAstr()
	want := `root { name: "hello"; exe [h] { dir: "src"; main: "main.c" } }`
	if got != want {
		t.Fatalf("ToAstr() = %q, want %q", got, want)
	}
}

func TestNodeEqualityByNamePropsArgsKids(t *testing.T) {
	a := New("widget")
	a.SetProp(value.StrKey("x"), value.Int(1))
	b := New("widget")
	b.SetProp(value.StrKey("x"), value.Int(1))
	if !a.AtomEqual(b) {
		t.Fatalf("expected structurally identical nodes to be equal")
	}

	b.SetProp(value.StrKey("x"), value.Int(2))
	if a.AtomEqual(b) {
		t.Fatalf("expected differing prop values to break equality")
	}
}

type fakeResolver struct {
	nodes map[MetaID]*Node
}

func (f fakeResolver) ResolveMeta(id MetaID) (*Node, error) {
	if n, ok := f.nodes[id]; ok {
		return n, nil
	}
	return nil, errNotFound(id)
}

type errNotFound MetaID

func (e errNotFound) Error() string { return "no such meta id: " + string(e) }

func TestLazyKidResolvesThroughUniverse(t *testing.T) {
	body := New("body")
	resolver := fakeResolver{nodes: map[MetaID]*Node{"meta-1": body}}

	parent := New("parent")
	parent.Kids().Put(value.StrKey("child"), LazyKid("meta-1"))

	got, err := parent.ChildByKey(value.StrKey("child"), resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != value.KindNode {
		t.Fatalf("expected a node value, got %v", got.Kind())
	}
}

func TestLazyKidWithoutResolverProducesErrorValueNotPanic(t *testing.T) {
	parent := New("parent")
	parent.Kids().Put(value.StrKey("child"), LazyKid("missing"))

	got, err := parent.ChildByKey(value.StrKey("child"), nil)
	if err != nil {
		t.Fatalf("resolution failures must surface as Error values, not errors: %v", err)
	}
	if !got.IsError() {
		t.Fatalf("expected an Error value, got %v", got.Kind())
	}
}

func TestKidsIterationOrderIsInsertionOrder(t *testing.T) {
	parent := New("parent")
	parent.Kids().PutEager(value.StrKey("z"), New("z"))
	parent.Kids().PutEager(value.StrKey("a"), New("a"))
	parent.Kids().PutEager(value.StrKey("m"), New("m"))

	var order []string
	parent.Kids().Iter(nil, func(key value.ValueKey, v value.Value) bool {
		order = append(order, key.Text())
		return true
	})
	want := []string{"z", "a", "m"}
	for i, k := range want {
		if order[i] != k {
			t.Fatalf("order[%d] = %s, want %s", i, order[i], k)
		}
	}
}
