package parser

import "testing"

func TestSplitTopLevelFindsFunctionDeclarations(t *testing.T) {
	src := "fn a() int { 1 }\nfn b() int { 2 }\n"
	decls := SplitTopLevel(src)
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d: %+v", len(decls), decls)
	}
	if decls[0].Path != "fn a" || decls[1].Path != "fn b" {
		t.Fatalf("unexpected paths: %q, %q", decls[0].Path, decls[1].Path)
	}
}

func TestSplitTopLevelHandlesLetAsSemicolonTerminated(t *testing.T) {
	src := "let x = 1;\nfn f() int { 2 }\n"
	decls := SplitTopLevel(src)
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d: %+v", len(decls), decls)
	}
	if decls[0].Path != "let x" {
		t.Fatalf("expected first declaration to be 'let x', got %q", decls[0].Path)
	}
}

func TestSplitTopLevelToleratesNestedBraces(t *testing.T) {
	src := "fn f() int { if true { 1 } else { 2 } }\n"
	decls := SplitTopLevel(src)
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d: %+v", len(decls), decls)
	}
	if decls[0].Source != "fn f() int { if true { 1 } else { 2 } }" {
		t.Fatalf("unexpected source span: %q", decls[0].Source)
	}
}
