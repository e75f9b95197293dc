package lifetime

import "testing"

func TestOutlivesIsReflexive(t *testing.T) {
	a := Of(3)
	if !Outlives(a, a) {
		t.Fatalf("expected outlives(a, a)")
	}
}

func TestOutlivesIsTransitive(t *testing.T) {
	a, b, c := Of(1), Of(2), Of(3)
	if !Outlives(a, b) || !Outlives(b, c) {
		t.Fatalf("setup assumption violated")
	}
	if !Outlives(a, c) {
		t.Fatalf("expected outlives(a, b) && outlives(b, c) => outlives(a, c)")
	}
}

func TestStaticOutlivesEverything(t *testing.T) {
	for _, l := range []Lifetime{Of(1), Of(100), Static} {
		if !Outlives(Static, l) {
			t.Fatalf("expected Static to outlive %v", l)
		}
	}
}

func TestIntersectPicksShorterLifetime(t *testing.T) {
	if got := Intersect(Of(1), Of(2)); got != Of(2) {
		t.Fatalf("intersect(1, 2) = %v, want 2", got)
	}
	if got := Intersect(Static, Of(5)); got != Of(5) {
		t.Fatalf("intersect(Static, 5) = %v, want 5", got)
	}
}

func TestContextFreshIsMonotonic(t *testing.T) {
	ctx := NewContext()
	a := ctx.Fresh()
	b := ctx.Fresh()
	if a.ID() >= b.ID() {
		t.Fatalf("expected strictly increasing ids, got %d then %d", a.ID(), b.ID())
	}
}

func TestContextBindAndLookup(t *testing.T) {
	ctx := NewContext()
	l := ctx.Fresh()
	ctx.Bind(42, l)
	got, ok := ctx.Lookup(42)
	if !ok || got != l {
		t.Fatalf("expected lookup to return bound lifetime")
	}
	if _, ok := ctx.Lookup(99); ok {
		t.Fatalf("expected lookup miss for unbound expr id")
	}
}
