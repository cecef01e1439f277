// Package parser extracts structured events from model output: plain text,
// thinking blocks, and tool calls. Tool calls arrive either wrapped in
// <tool_call>...</tool_call> tags or as bare JSON objects carrying "name"
// and "arguments" keys.
//
// The streaming parser is chunk-invariant: feeding the same text split at
// any byte positions produces the same concatenated event stream. Multi-byte
// UTF-8 sequences split across chunks are held back until complete.
package parser

import (
	"bytes"
	"errors"
	"strings"

	"github.com/pocketllm/agentkit/arena"
	"github.com/pocketllm/agentkit/jsonval"
	"github.com/pocketllm/agentkit/textutil"
)

const (
	tagToolCallOpen  = "<tool_call>"
	tagToolCallClose = "</tool_call>"
	tagThinkOpen     = "<think>"
	tagThinkClose    = "</think>"
	tagThinkingOpen  = "<thinking>"
	tagThinkingClose = "</thinking>"
)

var openTags = []string{tagToolCallOpen, tagThinkOpen, tagThinkingOpen}

// EventKind discriminates parser events.
type EventKind int

const (
	// EventText is a run of plain output text.
	EventText EventKind = iota
	// EventThinking is the content of a thinking block.
	EventThinking
	// EventToolCall is a parsed tool invocation.
	EventToolCall
)

// ToolCall is a tool invocation extracted from model output.
type ToolCall struct {
	// Name is the tool to invoke.
	Name string
	// Arguments is the argument object. Never nil; a call without an
	// arguments key gets an empty object.
	Arguments *jsonval.Value
	// RawJSON is the JSON text the call was parsed from.
	RawJSON string
}

// Event is one unit of parsed model output.
type Event struct {
	Kind     EventKind
	Text     string
	ToolCall *ToolCall
}

type state int

const (
	stateText state = iota
	stateTagOpen
	stateToolCall
	stateThink
	stateBareJSON
)

// Streaming parses model output incrementally. It is not safe for
// concurrent use.
type Streaming struct {
	a     *arena.Arena
	state state

	carry []byte // incomplete trailing UTF-8 sequence held between chunks
	text  []byte // committed text awaiting emission
	tag   []byte // candidate tag starting with '<'
	body  []byte // tool call or thinking body

	openTag string // the think variant we are inside

	json     []byte // bare JSON candidate
	depth    int
	inString bool
	escaped  bool
}

// NewStreaming returns a parser whose tool-call argument values are
// allocated in a.
func NewStreaming(a *arena.Arena) *Streaming {
	return &Streaming{a: a}
}

// Reset discards all buffered input and returns the parser to its initial
// state. The arena is left untouched.
func (s *Streaming) Reset() {
	s.state = stateText
	s.carry = s.carry[:0]
	s.text = s.text[:0]
	s.tag = s.tag[:0]
	s.body = s.body[:0]
	s.openTag = ""
	s.json = s.json[:0]
	s.depth = 0
	s.inString = false
	s.escaped = false
}

// InToolCall reports whether the parser is inside what looks like an
// unfinished tool call. Callers use it to suppress token forwarding while a
// call is being assembled.
func (s *Streaming) InToolCall() bool {
	switch s.state {
	case stateToolCall:
		return true
	case stateBareJSON:
		return bytes.Contains(s.json, []byte(`"name"`))
	case stateTagOpen:
		return strings.HasPrefix(tagToolCallOpen, string(s.tag))
	default:
		return false
	}
}

// Feed consumes the next chunk and returns the events completed by it.
// Text split mid-rune is held until the remaining bytes arrive.
func (s *Streaming) Feed(chunk string) []Event {
	var events []Event

	data := append(s.carry, chunk...)
	n := textutil.CompleteBoundary(data)
	s.carry = append([]byte(nil), data[n:]...)

	for _, c := range data[:n] {
		s.processByte(c, &events)
	}
	s.flushText(&events)
	return events
}

// Flush ends the stream. Unterminated constructs are surfaced as plain text
// with their opening tag restored, so no model output is silently lost. The
// parser is reset afterwards.
func (s *Streaming) Flush() []Event {
	var events []Event
	switch s.state {
	case stateTagOpen:
		s.text = append(s.text, s.tag...)
	case stateToolCall:
		s.text = append(s.text, tagToolCallOpen...)
		s.text = append(s.text, s.body...)
	case stateThink:
		s.text = append(s.text, s.openTag...)
		s.text = append(s.text, s.body...)
	case stateBareJSON:
		s.text = append(s.text, s.json...)
	}
	s.text = append(s.text, s.carry...)
	s.flushText(&events)
	s.Reset()
	return events
}

func (s *Streaming) flushText(events *[]Event) {
	if len(s.text) == 0 {
		return
	}
	*events = append(*events, Event{Kind: EventText, Text: string(s.text)})
	s.text = s.text[:0]
}

func (s *Streaming) processByte(c byte, events *[]Event) {
	switch s.state {
	case stateText:
		switch c {
		case '<':
			s.state = stateTagOpen
			s.tag = append(s.tag[:0], '<')
		case '{':
			s.state = stateBareJSON
			s.json = append(s.json[:0], '{')
			s.depth = 1
			s.inString = false
			s.escaped = false
		default:
			s.text = append(s.text, c)
		}

	case stateTagOpen:
		s.tag = append(s.tag, c)
		switch string(s.tag) {
		case tagToolCallOpen:
			s.state = stateToolCall
			s.tag = s.tag[:0]
			s.body = s.body[:0]
			return
		case tagThinkOpen, tagThinkingOpen:
			s.openTag = string(s.tag)
			s.state = stateThink
			s.tag = s.tag[:0]
			s.body = s.body[:0]
			return
		}
		if !isOpenTagPrefix(s.tag) {
			s.spillTag(events)
		}

	case stateToolCall:
		s.body = append(s.body, c)
		if bytes.HasSuffix(s.body, []byte(tagToolCallClose)) {
			raw := bytes.TrimSpace(s.body[:len(s.body)-len(tagToolCallClose)])
			s.emitToolCall(string(raw), false, events)
			s.body = s.body[:0]
			s.state = stateText
		}

	case stateThink:
		s.body = append(s.body, c)
		closeTag := closeTagFor(s.openTag)
		if bytes.HasSuffix(s.body, []byte(closeTag)) {
			content := bytes.TrimSpace(s.body[:len(s.body)-len(closeTag)])
			s.flushText(events)
			if len(content) > 0 {
				*events = append(*events, Event{Kind: EventThinking, Text: string(content)})
			}
			s.body = s.body[:0]
			s.openTag = ""
			s.state = stateText
		}

	case stateBareJSON:
		s.json = append(s.json, c)
		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			return
		}
		switch c {
		case '"':
			s.inString = true
		case '{':
			s.depth++
		case '}':
			s.depth--
			if s.depth == 0 {
				s.finishBareJSON(events)
			}
		}
	}
}

// spillTag abandons the tag candidate: the '<' becomes plain text and the
// remaining bytes are re-processed, so a nested '<' or '{' can still start
// a new construct.
func (s *Streaming) spillTag(events *[]Event) {
	buf := append([]byte(nil), s.tag...)
	s.tag = s.tag[:0]
	s.state = stateText
	s.text = append(s.text, buf[0])
	for _, b := range buf[1:] {
		s.processByte(b, events)
	}
}

// emitToolCall parses raw as a tool-call object. Malformed payloads are
// dropped and arena space allocated for them is reclaimed; requireArgs
// additionally demands an explicit "arguments" key (bare JSON detection).
func (s *Streaming) emitToolCall(raw string, requireArgs bool, events *[]Event) bool {
	sp := s.a.Savepoint()
	tc, err := ParseToolCallJSON(s.a, raw)
	if err != nil || (requireArgs && !strings.Contains(raw, `"arguments"`)) {
		s.a.Restore(sp)
		return false
	}
	s.flushText(events)
	*events = append(*events, Event{Kind: EventToolCall, ToolCall: tc})
	return true
}

// finishBareJSON decides whether a balanced top-level JSON object was a
// tool call. Anything else is reinstated as text.
func (s *Streaming) finishBareJSON(events *[]Event) {
	raw := string(s.json)
	s.json = s.json[:0]
	s.state = stateText

	if strings.Contains(raw, `"name"`) && strings.Contains(raw, `"arguments"`) {
		if s.emitToolCall(raw, true, events) {
			return
		}
	}
	s.text = append(s.text, raw...)
}

func isOpenTagPrefix(tag []byte) bool {
	for _, t := range openTags {
		if strings.HasPrefix(t, string(tag)) {
			return true
		}
	}
	return false
}

func closeTagFor(openTag string) string {
	if openTag == tagThinkingOpen {
		return tagThinkingClose
	}
	return tagThinkClose
}

// ParseToolCallJSON decodes a tool-call object: a JSON object with a
// non-empty string "name" and an optional "arguments" object. A missing
// arguments key yields an empty object.
func ParseToolCallJSON(a *arena.Arena, raw string) (*ToolCall, error) {
	v, err := jsonval.ParseString(a, raw)
	if err != nil {
		return nil, err
	}
	if v.Kind() != jsonval.KindObject {
		return nil, errors.New("parser: tool call is not a JSON object")
	}
	name, err := v.Get("name").AsString()
	if err != nil || name == "" {
		return nil, errors.New("parser: tool call has no name")
	}
	args := v.Get("arguments")
	if args == nil {
		args = jsonval.Object(0)
	}
	return &ToolCall{Name: name, Arguments: args, RawJSON: raw}, nil
}
