package parser

import (
	"strings"

	"github.com/pocketllm/agentkit/arena"
)

// Parse splits a complete response into events. The first thinking block is
// lifted out ahead of everything else, matching how downstream consumers
// store thinking separately from the visible reply.
func Parse(a *arena.Arena, text string) []Event {
	thinking, remaining := ExtractThinking(text)

	s := NewStreaming(a)
	events := s.Feed(remaining)
	events = append(events, s.Flush()...)

	if thinking != "" {
		events = append([]Event{{Kind: EventThinking, Text: thinking}}, events...)
	}
	return events
}

// HasToolCall reports whether text contains at least one complete tool call,
// tagged or bare.
func HasToolCall(text string) bool {
	a := arena.New(0)
	for _, ev := range Parse(a, text) {
		if ev.Kind == EventToolCall {
			return true
		}
	}
	return false
}

// HasIncompleteToolCall reports whether text ends inside what could still
// become a tool call: an unclosed <tool_call> tag, a partial opening tag, or
// unbalanced bare JSON already carrying a "name" key.
func HasIncompleteToolCall(text string) bool {
	s := NewStreaming(arena.New(0))
	s.Feed(text)
	return s.InToolCall()
}

// TextBeforeToolCall returns the visible text preceding the first tool call,
// trimmed. Without a tool call it returns all visible text.
func TextBeforeToolCall(text string) string {
	a := arena.New(0)
	var sb strings.Builder
	for _, ev := range Parse(a, text) {
		if ev.Kind == EventToolCall {
			break
		}
		if ev.Kind == EventText {
			sb.WriteString(ev.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// TextAfterToolCall returns the visible text following the first tool call,
// trimmed. Without a tool call it returns "".
func TextAfterToolCall(text string) string {
	a := arena.New(0)
	var sb strings.Builder
	seen := false
	for _, ev := range Parse(a, text) {
		switch {
		case ev.Kind == EventToolCall:
			seen = true
		case seen && ev.Kind == EventText:
			sb.WriteString(ev.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// ExtractThinking removes the first thinking block from text and returns its
// trimmed content alongside the remaining text. A closing tag with no opener
// is honored too: some models emit their reasoning first and only mark where
// it ends, so everything before the close tag counts as thinking.
func ExtractThinking(text string) (thinking, remaining string) {
	pairs := [][2]string{
		{tagThinkOpen, tagThinkClose},
		{tagThinkingOpen, tagThinkingClose},
	}
	for _, p := range pairs {
		open, closeTag := p[0], p[1]
		if i := strings.Index(text, open); i >= 0 {
			rest := text[i+len(open):]
			j := strings.Index(rest, closeTag)
			if j < 0 {
				// Unterminated open tag: leave the text alone so the
				// streaming pass can surface it verbatim.
				continue
			}
			thinking = strings.TrimSpace(rest[:j])
			remaining = text[:i] + rest[j+len(closeTag):]
			return thinking, remaining
		}
		if j := strings.Index(text, closeTag); j >= 0 {
			return strings.TrimSpace(text[:j]), text[j+len(closeTag):]
		}
	}
	return "", text
}

// FindBareJSON locates a bare tool-call object in text: the '{' nearest
// before a "name" key, extended to its matching brace, provided the span
// also carries an "arguments" key. It returns the half-open byte range.
func FindBareJSON(text string) (start, end int, ok bool) {
	idx := strings.Index(text, `"name"`)
	if idx < 0 {
		return 0, 0, false
	}
	i := idx - 1
	for i >= 0 && isSpace(text[i]) {
		i--
	}
	if i < 0 || text[i] != '{' {
		return 0, 0, false
	}
	j := findMatchingBrace(text, i)
	if j < 0 {
		return 0, 0, false
	}
	if !strings.Contains(text[i:j+1], `"arguments"`) {
		return 0, 0, false
	}
	return i, j + 1, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// findMatchingBrace returns the index of the brace closing text[open],
// skipping braces inside JSON strings, or -1 when unbalanced.
func findMatchingBrace(text string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
