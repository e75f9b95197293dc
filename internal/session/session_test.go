package session

import "testing"

func emit(frags []*Fragment) {
	for _, f := range frags {
		if f.Dirty {
			f.Artifact = "/* " + f.DeclPath + " */"
		}
	}
}

func TestSyncMarksAllFragmentsDirtyOnFirstSight(t *testing.T) {
	s := New()
	src := "fn a() int { 1 }\nfn b() int { 2 }\n"
	frags := s.Sync("f.auto", "c", src)
	emit(frags)
	if err := s.Commit(frags); err != nil {
		t.Fatalf("commit: %v", err)
	}
	st := Stat(frags)
	if st.Total != 2 || st.Dirty != 2 {
		t.Fatalf("expected 2 total 2 dirty on first sight, got %+v", st)
	}
}

func TestSyncIsCleanOnUnchangedSecondCall(t *testing.T) {
	s := New()
	src := "fn a() int { 1 }\nfn b() int { 2 }\n"
	first := s.Sync("f.auto", "c", src)
	emit(first)
	_ = s.Commit(first)

	second := s.Sync("f.auto", "c", src)
	st := Stat(second)
	if st.Total != 2 || st.Dirty != 0 {
		t.Fatalf("expected 0 dirty on unchanged second call, got %+v", st)
	}
	for _, f := range second {
		if f.Artifact == "" {
			t.Fatalf("expected clean fragment to reuse its cached artifact")
		}
	}
}

func TestSyncMarksOnlyEditedFragmentDirty(t *testing.T) {
	s := New()
	src := "fn a() int { 1 }\nfn b() int { 2 }\n"
	first := s.Sync("f.auto", "c", src)
	emit(first)
	_ = s.Commit(first)

	edited := "fn a() int { 1 }\nfn b() int { 3 }\n"
	second := s.Sync("f.auto", "c", edited)
	st := Stat(second)
	if st.Total != 2 || st.Dirty != 1 {
		t.Fatalf("expected exactly 1 dirty after editing one declaration, got %+v", st)
	}
}

func TestSyncPropagatesDirtyThroughDependency(t *testing.T) {
	s := New()
	src := "fn b() int { 2 }\nfn a() int { b() }\n"
	first := s.Sync("f.auto", "c", src)
	emit(first)
	_ = s.Commit(first)

	edited := "fn b() int { 9 }\nfn a() int { b() }\n"
	second := s.Sync("f.auto", "c", edited)
	for _, f := range second {
		if !f.Dirty {
			t.Fatalf("expected both the edited fragment and its dependent to be dirty, got %+v", f)
		}
	}
}
