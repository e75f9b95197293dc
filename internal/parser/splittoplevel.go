package parser

import "strings"

// Declaration is one unambiguous top-level span found by SplitTopLevel:
// a fn/type/spec/let declaration's source text and the name used as its
// fragment path.
type Declaration struct {
	Path   string
	Source string
	Start  int
	End    int
}

// SplitTopLevel finds top-level declaration boundaries by brace-depth
// scanning, without building a full AST — a cheap structural pass ahead
// of the expensive parse/analyze/emit pipeline, mirroring the
// scan-before-parse shape of the byte-level lexer pre-pass.
func SplitTopLevel(src string) []Declaration {
	var decls []Declaration
	i := 0
	n := len(src)
	for i < n {
		i = skipTrivia(src, i)
		if i >= n {
			break
		}
		start := i
		kw, ok := matchKeyword(src, i)
		if !ok {
			// Not a recognized top-level declaration keyword; skip to the
			// next statement boundary so unrelated text doesn't wedge the
			// scan.
			i = skipToBoundary(src, i)
			continue
		}
		i += len(kw)
		i = skipSpaces(src, i)
		name, nameEnd := readIdent(src, i)
		i = nameEnd

		depth := 0
		enteredBrace := false
		for i < n {
			c := src[i]
			switch c {
			case '{':
				depth++
				enteredBrace = true
				i++
			case '}':
				depth--
				i++
				if enteredBrace && depth == 0 {
					goto closed
				}
			case ';':
				i++
				if !enteredBrace {
					goto closed
				}
			default:
				i++
			}
		}
	closed:
		path := kw
		if name != "" {
			path = kw + " " + name
		}
		decls = append(decls, Declaration{
			Path:   path,
			Source: src[start:i],
			Start:  start,
			End:    i,
		})
	}
	return decls
}

var topLevelKeywords = []string{"fn", "type", "spec", "let"}

func matchKeyword(src string, i int) (string, bool) {
	for _, kw := range topLevelKeywords {
		end := i + len(kw)
		if end <= len(src) && src[i:end] == kw && (end == len(src) || isBoundary(src[end])) {
			return kw, true
		}
	}
	return "", false
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ':'
}

func skipSpaces(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}

func readIdent(src string, i int) (string, int) {
	start := i
	for i < len(src) {
		c := src[i]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			break
		}
		i++
	}
	return src[start:i], i
}

func skipTrivia(src string, i int) int {
	for i < len(src) {
		c := src[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		if c == '#' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		}
		break
	}
	return i
}

func skipToBoundary(src string, i int) int {
	idx := strings.IndexAny(src[i:], ";\n")
	if idx < 0 {
		return len(src)
	}
	return i + idx + 1
}
