package atomtree

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/oxhq/autolang/internal/value"
)

// ParseAstr parses the Atom textual form produced by ToAstr back into a
// Node tree. This is the Atom markup's own reader — distinct from the
// AutoLang expression grammar in internal/parser — and exists so the
// parse-then-emit round trip is checkable without a full language
// front-end.
func ParseAstr(src string) (*Node, error) {
	p := &astrParser{src: src}
	p.skipSpace()
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("trailing input at offset %d", p.pos)
	}
	return n, nil
}

type astrParser struct {
	src string
	pos int
}

func (p *astrParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *astrParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *astrParser) parseNode() (*Node, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	n := New(name)
	p.skipSpace()

	if p.peek() == '[' {
		p.pos++
		p.skipSpace()
		id, err := p.parseIdentOrString()
		if err != nil {
			return nil, err
		}
		n.SetID(id)
		p.skipSpace()
		if p.peek() != ']' {
			return nil, fmt.Errorf("expected ']' at offset %d", p.pos)
		}
		p.pos++
		p.skipSpace()
	}

	if p.peek() == '(' {
		p.pos++
		p.skipSpace()
		for p.peek() != ')' {
			arg, err := p.parseArg()
			if err != nil {
				return nil, err
			}
			n.AppendArg(arg)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				p.skipSpace()
			}
		}
		p.pos++ // consume ')'
		p.skipSpace()
	}

	if p.peek() == '{' {
		p.pos++
		p.skipSpace()
		for p.peek() != '}' {
			if err := p.parseItem(n); err != nil {
				return nil, err
			}
			p.skipSpace()
			if p.peek() == ';' {
				p.pos++
				p.skipSpace()
			}
		}
		p.pos++ // consume '}'
	}
	return n, nil
}

// parseItem parses one `prop: value`, a bare string text leaf, or a child
// node, and attaches it to n.
func (p *astrParser) parseItem(n *Node) error {
	start := p.pos
	if p.peek() == '"' {
		s, err := p.parseString()
		if err != nil {
			return err
		}
		p.skipSpace()
		if p.peek() == ':' {
			// quoted key
			p.pos++
			p.skipSpace()
			v, err := p.parseValue()
			if err != nil {
				return err
			}
			n.SetProp(value.StrKey(s), v)
			return nil
		}
		n.SetText(s)
		return nil
	}

	ident, err := p.tryParseIdent()
	if err == nil {
		p.skipSpace()
		if p.peek() == ':' {
			p.pos++
			p.skipSpace()
			v, err := p.parseValue()
			if err != nil {
				return err
			}
			n.SetProp(value.StrKey(ident), v)
			return nil
		}
		// It's a child node; rewind to re-parse as a full node (it may
		// have [id]/(args)/{...}).
		p.pos = start
		child, err := p.parseNode()
		if err != nil {
			return err
		}
		n.Kids().Append(child)
		return nil
	}
	return fmt.Errorf("unexpected input at offset %d", p.pos)
}

func (p *astrParser) parseArg() (Arg, error) {
	start := p.pos
	if ident, err := p.tryParseIdent(); err == nil {
		p.skipSpace()
		if p.peek() == ':' {
			p.pos++
			p.skipSpace()
			v, err := p.parseValue()
			if err != nil {
				return Arg{}, err
			}
			return Arg{Name: ident, Val: v}, nil
		}
		p.pos = start
	}
	v, err := p.parseValue()
	if err != nil {
		return Arg{}, err
	}
	return Arg{Val: v}, nil
}

func (p *astrParser) parseValue() (value.Value, error) {
	p.skipSpace()
	switch {
	case p.peek() == '"':
		s, err := p.parseString()
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s), nil
	case p.peek() == '[':
		return p.parseArray()
	case p.peek() == '{':
		return p.parseObjLit()
	default:
		return p.parseScalar()
	}
}

func (p *astrParser) parseArray() (value.Value, error) {
	p.pos++ // '['
	p.skipSpace()
	var items []value.Value
	for p.peek() != ']' {
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			p.skipSpace()
		}
	}
	p.pos++ // ']'
	return value.Array(items), nil
}

func (p *astrParser) parseObjLit() (value.Value, error) {
	p.pos++ // '{'
	p.skipSpace()
	o := value.NewObj()
	for p.peek() != '}' {
		var key string
		if p.peek() == '"' {
			s, err := p.parseString()
			if err != nil {
				return value.Value{}, err
			}
			key = s
		} else {
			ident, err := p.parseIdent()
			if err != nil {
				return value.Value{}, err
			}
			key = ident
		}
		p.skipSpace()
		if p.peek() != ':' {
			return value.Value{}, fmt.Errorf("expected ':' at offset %d", p.pos)
		}
		p.pos++
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		o.Set(value.StrKey(key), v)
		p.skipSpace()
		if p.peek() == ';' {
			p.pos++
			p.skipSpace()
		}
	}
	p.pos++ // '}'
	return value.ObjVal(o), nil
}

func (p *astrParser) parseScalar() (value.Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if unicode.IsSpace(rune(c)) || c == ',' || c == ';' || c == ')' || c == ']' || c == '}' {
			break
		}
		p.pos++
	}
	tok := p.src[start:p.pos]
	switch tok {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "nil":
		return value.Nil, nil
	case "null":
		return value.Null, nil
	case "void":
		return value.Void, nil
	}
	if i, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return value.Int(int32(i)), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return value.Double(f), nil
	}
	return value.Str(tok), nil
}

func (p *astrParser) parseString() (string, error) {
	if p.peek() != '"' {
		return "", fmt.Errorf("expected string at offset %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(p.src[p.pos])
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *astrParser) parseIdentOrString() (string, error) {
	if p.peek() == '"' {
		return p.parseString()
	}
	return p.parseIdent()
}

func (p *astrParser) tryParseIdent() (string, error) {
	save := p.pos
	s, err := p.parseIdent()
	if err != nil {
		p.pos = save
	}
	return s, err
}

func (p *astrParser) parseIdent() (string, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		isAlpha := unicode.IsLetter(c) || c == '_'
		isDigit := unicode.IsDigit(c)
		if p.pos == start && !isAlpha {
			break
		}
		if p.pos > start && !isAlpha && !isDigit {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("expected identifier at offset %d", p.pos)
	}
	return p.src[start:p.pos], nil
}
