package atomtree

import (
	"testing"

	"github.com/oxhq/autolang/internal/value"
)

func TestParseAstrRoundTripWithNestedLabelledChild(t *testing.T) {
	src := `root { name: "hello"; exe [h] { dir: "src"; main: "main.c" } }`

	n1, err := ParseAstr(src)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	emitted := n1.ToAstr()
	if emitted != src {
		t.Fatalf("ToAstr() = %q, want %q", emitted, src)
	}

	n2, err := ParseAstr(emitted)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !n1.AtomEqual(n2) {
		t.Fatalf("parse(emit(parse(D))) must structurally equal parse(D)")
	}
}

func TestParseAstrArraysAndObjects(t *testing.T) {
	n, err := ParseAstr(`cfg { items: [1, 2, 3]; meta: {k: "v"} }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	items, ok := n.Prop(value.StrKey("items"))
	if !ok || items.Kind() != value.KindArray {
		t.Fatalf("expected items prop to be an array, got %+v (ok=%v)", items, ok)
	}
	if len(items.Array()) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items.Array()))
	}

	meta, ok := n.Prop(value.StrKey("meta"))
	if !ok || meta.Kind() != value.KindObj {
		t.Fatalf("expected meta prop to be an object, got %+v (ok=%v)", meta, ok)
	}
	v, ok := meta.Obj().Get(value.StrKey("k"))
	if !ok || v.Str() != "v" {
		t.Fatalf("expected meta.k == \"v\", got %+v", v)
	}
}
