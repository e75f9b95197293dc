package value

import "testing"

func TestThreeEmptiesAreDistinctButAllEmpty(t *testing.T) {
	if !Nil.IsEmpty() || !Null.IsEmpty() || !Void.IsEmpty() {
		t.Fatalf("nil, null, and void must all report IsEmpty")
	}
	if Nil.Equal(Null) {
		t.Fatalf("nil must not equal null")
	}
	if Nil.Equal(Void) {
		t.Fatalf("nil must not equal void")
	}
	if Null.Equal(Void) {
		t.Fatalf("null must not equal void")
	}
	if !Nil.Equal(Nil) || !Null.Equal(Null) || !Void.Equal(Void) {
		t.Fatalf("each empty must equal itself")
	}
}

func TestScalarDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(42), "42"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Str("hi"), "hi"},
		{Double(1.5), "1.5"},
	}
	for _, c := range cases {
		if got := c.v.Display(); got != c.want {
			t.Fatalf("Display(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestArrayDisplayQuotesStrings(t *testing.T) {
	arr := Array([]Value{Str("a"), Int(1), Str("b")})
	got := arr.Display()
	want := `["a", 1, "b"]`
	if got != want {
		t.Fatalf("Display() = %q, want %q", got, want)
	}
}

func TestCStrCarriesTrailingNUL(t *testing.T) {
	cs := CStr("hello")
	if cs.Kind() != KindCStr {
		t.Fatalf("expected KindCStr")
	}
	if cs.Display() != "hello" {
		t.Fatalf("Display should strip trailing NUL, got %q", cs.Display())
	}
	p := cs.CStrPtr()
	if p == nil {
		t.Fatalf("expected non-nil C pointer")
	}
}

func TestArrayStructuralEquality(t *testing.T) {
	a := Array([]Value{Int(1), Str("x")})
	b := Array([]Value{Int(1), Str("x")})
	c := Array([]Value{Int(1), Str("y")})
	if !a.Equal(b) {
		t.Fatalf("expected structurally equal arrays to be equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected differing arrays to be unequal")
	}
}
