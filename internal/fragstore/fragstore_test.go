package fragstore

import (
	"path/filepath"
	"testing"
)

func TestPutGetRoundTripsDependencies(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "frags.db")
	s, err := Open(dsn, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	row := Row{
		ID:           "f1:c",
		FileID:       "f1",
		DeclPath:     "fn a",
		TokenHash:    "abc123",
		Target:       "c",
		Artifact:     "int a(void) { return 1; }",
		Dependencies: []string{"f1:decl:b"},
		Dirty:        true,
	}
	if err := s.Put(row); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := s.Get("f1:c")
	if !ok {
		t.Fatalf("expected row to be found")
	}
	if got.TokenHash != row.TokenHash || got.Artifact != row.Artifact {
		t.Fatalf("round-tripped row mismatch: %+v", got)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0] != "f1:decl:b" {
		t.Fatalf("expected dependencies to round-trip, got %v", got.Dependencies)
	}
}

func TestByFileReturnsOnlyMatchingRows(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "frags.db")
	s, err := Open(dsn, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_ = s.Put(Row{ID: "a:c", FileID: "a", DeclPath: "fn a", TokenHash: "h1", Target: "c"})
	_ = s.Put(Row{ID: "b:c", FileID: "b", DeclPath: "fn b", TokenHash: "h2", Target: "c"})

	rows, err := s.ByFile("a")
	if err != nil {
		t.Fatalf("by file: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "a:c" {
		t.Fatalf("expected exactly the one row for file a, got %v", rows)
	}
}

func TestAllReturnsEveryRow(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "frags.db")
	s, err := Open(dsn, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_ = s.Put(Row{ID: "a:c", FileID: "a", DeclPath: "fn a", TokenHash: "h1", Target: "c"})
	_ = s.Put(Row{ID: "b:rust", FileID: "b", DeclPath: "fn b", TokenHash: "h2", Target: "rust"})

	rows, err := s.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected every row across files and targets, got %d", len(rows))
	}
}
