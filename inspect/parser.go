package inspect

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// parser reads PDF objects from a byte slice.
type parser struct {
	data []byte
	pos  int
}

func newParser(data []byte) *parser {
	return &parser{data: data}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch b := p.data[p.pos]; {
		case isSpace(b):
			p.pos++
		case b == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		default:
			return
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// token reads a keyword or number.
func (p *parser) token() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.data) && !isSpace(p.data[p.pos]) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

func (p *parser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.data[p.pos:], []byte(s))
}

func (p *parser) object() (object, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, io.ErrUnexpectedEOF
	}
	switch b := p.data[p.pos]; {
	case p.hasPrefix("<<"):
		return p.dict()
	case b == '<':
		return p.hexString()
	case b == '(':
		return p.literal()
	case b == '/':
		return p.name(), nil
	case b == '[':
		return p.array()
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return p.numberOrRef()
	}
	switch tok := p.token(); tok {
	case "true":
		return boolean(true), nil
	case "false":
		return boolean(false), nil
	case "null":
		return null{}, nil
	default:
		return nil, fmt.Errorf("inspect: unexpected token %q at offset %d", tok, p.pos)
	}
}

func (p *parser) name() name {
	p.pos++ // '/'
	var buf bytes.Buffer
	for p.pos < len(p.data) {
		b := p.data[p.pos]
		if isSpace(b) || isDelim(b) {
			break
		}
		if b == '#' && p.pos+2 < len(p.data) {
			if v, err := strconv.ParseUint(string(p.data[p.pos+1:p.pos+3]), 16, 8); err == nil {
				buf.WriteByte(byte(v))
				p.pos += 3
				continue
			}
		}
		buf.WriteByte(b)
		p.pos++
	}
	return name(buf.String())
}

func (p *parser) numberOrRef() (object, error) {
	start := p.pos
	tok := p.token()
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("inspect: invalid number %q at offset %d", tok, start)
		}
		return float(f), nil
	}
	// "N G R"
	after := p.pos
	if gen, err := strconv.Atoi(p.token()); err == nil {
		p.skipSpace()
		if p.pos < len(p.data) && p.data[p.pos] == 'R' {
			p.pos++
			return ref{num: int(n), gen: gen}, nil
		}
	}
	p.pos = after
	return integer(n), nil
}

func (p *parser) literal() (str, error) {
	p.pos++ // '('
	var buf bytes.Buffer
	for depth := 1; p.pos < len(p.data); {
		b := p.data[p.pos]
		p.pos++
		switch b {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return str(buf.Bytes()), nil
			}
		case '\\':
			if p.pos >= len(p.data) {
				return nil, fmt.Errorf("inspect: unterminated escape")
			}
			esc := p.data[p.pos]
			p.pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r', '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					v := int(esc - '0')
					for i := 0; i < 2 && p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '7'; i++ {
						v = v*8 + int(p.data[p.pos]-'0')
						p.pos++
					}
					buf.WriteByte(byte(v))
				} else {
					buf.WriteByte(esc)
				}
			}
			continue
		}
		buf.WriteByte(b)
	}
	return nil, fmt.Errorf("inspect: unterminated string")
}

func (p *parser) hexString() (str, error) {
	p.pos++ // '<'
	end := bytes.IndexByte(p.data[p.pos:], '>')
	if end < 0 {
		return nil, fmt.Errorf("inspect: unterminated hex string")
	}
	digits := make([]byte, 0, end)
	for _, b := range p.data[p.pos : p.pos+end] {
		if !isSpace(b) {
			digits = append(digits, b)
		}
	}
	p.pos += end + 1
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		v, err := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("inspect: invalid hex string: %w", err)
		}
		out[i] = byte(v)
	}
	return str(out), nil
}

func (p *parser) array() (array, error) {
	p.pos++ // '['
	var a array
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("inspect: unterminated array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return a, nil
		}
		o, err := p.object()
		if err != nil {
			return nil, err
		}
		a = append(a, o)
	}
}

func (p *parser) dict() (dict, error) {
	p.pos += 2 // '<<'
	d := make(dict)
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("inspect: unterminated dictionary")
		}
		if p.hasPrefix(">>") {
			p.pos += 2
			return d, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("inspect: dictionary key at offset %d is not a name", p.pos)
		}
		key := p.name()
		val, err := p.object()
		if err != nil {
			return nil, fmt.Errorf("inspect: value of /%s: %w", key, err)
		}
		d[key] = val
	}
}

// indirect parses "N G obj ... endobj" and returns the value.
func (p *parser) indirect() (object, error) {
	num, err := strconv.Atoi(p.token())
	if err != nil {
		return nil, fmt.Errorf("inspect: expected object number")
	}
	if _, err := strconv.Atoi(p.token()); err != nil {
		return nil, fmt.Errorf("inspect: object %d: expected generation", num)
	}
	if tok := p.token(); tok != "obj" {
		return nil, fmt.Errorf("inspect: object %d: expected obj, got %q", num, tok)
	}
	val, err := p.object()
	if err != nil {
		return nil, fmt.Errorf("inspect: object %d: %w", num, err)
	}
	p.skipSpace()
	if !p.hasPrefix("stream") {
		return val, nil
	}
	d, ok := val.(dict)
	if !ok {
		return nil, fmt.Errorf("inspect: object %d: stream without dictionary", num)
	}
	p.pos += len("stream")
	if p.pos < len(p.data) && p.data[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}
	n, _ := d.integer("Length")
	if n < 0 || p.pos+int(n) > len(p.data) {
		return nil, fmt.Errorf("inspect: object %d: stream exceeds file", num)
	}
	data := p.data[p.pos : p.pos+int(n)]
	p.pos += int(n)
	return stream{dict: d, data: data}, nil
}
