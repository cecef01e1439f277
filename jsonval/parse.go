package jsonval

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/pocketllm/agentkit/arena"
)

// ParseError reports why and where parsing failed. Pos is a byte offset
// into the input.
type ParseError struct {
	Msg string
	Pos int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonval: %s at offset %d", e.Msg, e.Pos)
}

type parser struct {
	a    *arena.Arena
	data []byte
	pos  int
}

// Parse decodes a complete JSON document from data. Trailing non-whitespace
// content is an error. On failure the returned error is a *ParseError
// carrying the byte offset of the problem; the partial value is discarded.
//
// Duplicate object keys follow last-write-wins: every pair is routed through
// Set, so a repeated key overwrites the earlier value in place and keeps the
// key's original position in the insertion order.
func Parse(a *arena.Arena, data []byte) (*Value, error) {
	p := &parser{a: a, data: data}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if !p.atEnd() {
		return nil, &ParseError{Msg: "unexpected content after JSON", Pos: p.pos}
	}
	return v, nil
}

// ParseString is Parse over a string input.
func ParseString(a *arena.Arena, s string) (*Value, error) {
	return Parse(a, []byte(s))
}

func (p *parser) atEnd() bool { return p.pos >= len(p.data) }

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) match(c byte) bool {
	if p.atEnd() || p.data[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *parser) skipWhitespace() {
	for !p.atEnd() {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: p.pos}
}

func (p *parser) parseValue() (*Value, error) {
	p.skipWhitespace()
	if p.atEnd() {
		return nil, p.errorf("unexpected end of input")
	}

	switch c := p.peek(); {
	case c == 'n':
		return p.parseLiteral("null", Null())
	case c == 't':
		return p.parseLiteral("true", Bool(true))
	case c == 'f':
		return p.parseLiteral("false", Bool(false))
	case c == '"':
		return p.parseString()
	case c == '[':
		return p.parseArray()
	case c == '{':
		return p.parseObject()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) parseLiteral(lit string, v *Value) (*Value, error) {
	if p.pos+len(lit) > len(p.data) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return nil, p.errorf("invalid literal")
	}
	p.pos += len(lit)
	return v, nil
}

func (p *parser) parseString() (*Value, error) {
	if !p.match('"') {
		return nil, p.errorf("expected '\"'")
	}
	start := p.pos
	hasEscapes := false
	for !p.atEnd() && p.peek() != '"' {
		if p.peek() == '\\' {
			hasEscapes = true
			p.pos++
			if p.atEnd() {
				return nil, p.errorf("unterminated string")
			}
		}
		p.pos++
	}
	if !p.match('"') {
		return nil, p.errorf("unterminated string")
	}
	raw := p.data[start : p.pos-1]
	if !hasEscapes {
		return StringBytes(p.a, raw), nil
	}
	decoded, err := p.decodeEscapes(raw, start)
	if err != nil {
		return nil, err
	}
	return &Value{kind: KindString, s: decoded}, nil
}

// decodeEscapes rewrites raw (which contains at least one backslash) into an
// arena buffer. The decoded form is never longer than the escaped form, so a
// single allocation of len(raw) suffices.
func (p *parser) decodeEscapes(raw []byte, base int) ([]byte, error) {
	buf := p.a.Alloc(len(raw))
	j := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			buf[j] = c
			j++
			continue
		}
		i++
		if i >= len(raw) {
			return nil, &ParseError{Msg: "truncated escape", Pos: base + i}
		}
		switch raw[i] {
		case '"':
			buf[j] = '"'
			j++
		case '\\':
			buf[j] = '\\'
			j++
		case '/':
			buf[j] = '/'
			j++
		case 'b':
			buf[j] = '\b'
			j++
		case 'f':
			buf[j] = '\f'
			j++
		case 'n':
			buf[j] = '\n'
			j++
		case 'r':
			buf[j] = '\r'
			j++
		case 't':
			buf[j] = '\t'
			j++
		case 'u':
			cp, n, err := decodeUnicodeEscape(raw[i-1:], base+i-1)
			if err != nil {
				return nil, err
			}
			// n counts from the backslash at i-1; the loop's own increment
			// advances past the final escape byte.
			i += n - 2
			j += utf8.EncodeRune(buf[j:j+utf8.UTFMax], cp)
		default:
			return nil, &ParseError{Msg: "invalid escape character", Pos: base + i}
		}
	}
	return buf[:j], nil
}

// decodeUnicodeEscape decodes \uXXXX at the start of b, consuming a trailing
// low surrogate when the first unit is a high surrogate. It returns the rune
// and the number of bytes consumed including the leading backslash.
func decodeUnicodeEscape(b []byte, pos int) (rune, int, error) {
	u, err := hex4(b, 2, pos)
	if err != nil {
		return 0, 0, err
	}
	// Surrogate pair handling: a high surrogate must be followed by \uXXXX
	// encoding a low surrogate, otherwise the replacement character is used.
	if u >= 0xD800 && u <= 0xDBFF {
		if len(b) >= 12 && b[6] == '\\' && b[7] == 'u' {
			lo, err := hex4(b, 8, pos+6)
			if err == nil && lo >= 0xDC00 && lo <= 0xDFFF {
				r := 0x10000 + (rune(u)-0xD800)<<10 + (rune(lo) - 0xDC00)
				return r, 12, nil
			}
		}
		return utf8.RuneError, 6, nil
	}
	if u >= 0xDC00 && u <= 0xDFFF {
		return utf8.RuneError, 6, nil
	}
	return rune(u), 6, nil
}

func hex4(b []byte, off, pos int) (uint32, error) {
	if off+4 > len(b) {
		return 0, &ParseError{Msg: "truncated unicode escape", Pos: pos}
	}
	var u uint32
	for k := 0; k < 4; k++ {
		c := b[off+k]
		u <<= 4
		switch {
		case c >= '0' && c <= '9':
			u |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			u |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			u |= uint32(c-'A') + 10
		default:
			return 0, &ParseError{Msg: "invalid unicode escape", Pos: pos + off + k}
		}
	}
	return u, nil
}

func (p *parser) parseNumber() (*Value, error) {
	start := p.pos
	isDouble := false

	p.match('-')

	switch {
	case p.peek() == '0':
		p.pos++
	case p.peek() >= '1' && p.peek() <= '9':
		for p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
	default:
		return nil, p.errorf("invalid number")
	}

	if p.peek() == '.' {
		isDouble = true
		p.pos++
		if p.peek() < '0' || p.peek() > '9' {
			return nil, p.errorf("expected digit after decimal point")
		}
		for p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
	}

	if c := p.peek(); c == 'e' || c == 'E' {
		isDouble = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.peek() < '0' || p.peek() > '9' {
			return nil, p.errorf("expected digit in exponent")
		}
		for p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
	}

	lit := string(p.data[start:p.pos])
	if isDouble {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, &ParseError{Msg: "invalid number", Pos: start}
		}
		return Double(f), nil
	}
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		// Integer literal overflowing int64 falls back to double.
		f, ferr := strconv.ParseFloat(lit, 64)
		if ferr != nil {
			return nil, &ParseError{Msg: "invalid number", Pos: start}
		}
		return Double(f), nil
	}
	return Int(i), nil
}

func (p *parser) parseArray() (*Value, error) {
	if !p.match('[') {
		return nil, p.errorf("expected '['")
	}
	arr := Array(0)
	p.skipWhitespace()
	if p.match(']') {
		return arr, nil
	}
	for {
		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := arr.Append(elem); err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if p.match(',') {
			continue
		}
		if p.match(']') {
			return arr, nil
		}
		return nil, p.errorf("expected ',' or ']'")
	}
}

func (p *parser) parseObject() (*Value, error) {
	if !p.match('{') {
		return nil, p.errorf("expected '{'")
	}
	obj := Object(0)
	p.skipWhitespace()
	if p.match('}') {
		return obj, nil
	}
	for {
		p.skipWhitespace()
		if p.peek() != '"' {
			return nil, p.errorf("expected string key")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if !p.match(':') {
			return nil, p.errorf("expected ':'")
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := obj.Set(p.a, string(key.s), val); err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if p.match(',') {
			continue
		}
		if p.match('}') {
			return obj, nil
		}
		return nil, p.errorf("expected ',' or '}'")
	}
}
