// Package textutil provides UTF-8 boundary helpers shared by the streaming
// parser and the orchestrator. The streaming parser must never emit a
// truncated multi-byte character, and tool results are clipped on rune
// boundaries before being fed back to the model.
package textutil

import "unicode/utf8"

// Ellipsis is appended to text clipped by Truncate.
const Ellipsis = "..."

// ValidUTF8 reports whether b is well-formed UTF-8.
func ValidUTF8(b []byte) bool { return utf8.Valid(b) }

// RuneLen returns the encoded length implied by a UTF-8 leading byte,
// or 0 if the byte cannot start a sequence.
func RuneLen(first byte) int {
	switch {
	case first < 0x80:
		return 1
	case first&0xE0 == 0xC0:
		return 2
	case first&0xF0 == 0xE0:
		return 3
	case first&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// CompleteBoundary returns the largest offset <= len(b) such that b[:offset]
// ends on a complete UTF-8 sequence. Invalid leading bytes count as
// single-byte characters so that garbage input still drains.
func CompleteBoundary(b []byte) int {
	pos := 0
	for pos < len(b) {
		n := RuneLen(b[pos])
		if n == 0 {
			pos++
			continue
		}
		if pos+n > len(b) {
			break
		}
		pos += n
	}
	return pos
}

// RuneStart scans backwards from pos to the start of the UTF-8 sequence
// containing b[pos].
func RuneStart(b []byte, pos int) int {
	if pos >= len(b) {
		return pos
	}
	for pos > 0 && b[pos]&0xC0 == 0x80 {
		pos--
	}
	return pos
}

// Truncate clips s to at most max bytes, never splitting a multi-byte
// character, and appends Ellipsis when clipping occurred. Strings within
// the budget are returned unchanged with no marker.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		if max <= 0 && len(s) > 0 {
			return Ellipsis
		}
		return s
	}
	budget := max - len(Ellipsis)
	if budget < 0 {
		budget = 0
	}
	cut := CompleteBoundary([]byte(s[:budget]))
	return s[:cut] + Ellipsis
}
