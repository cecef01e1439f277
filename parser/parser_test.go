package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketllm/agentkit/arena"
)

// merged collapses adjacent text events so streams fed with different chunk
// boundaries can be compared.
func merged(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == EventText && len(out) > 0 && out[len(out)-1].Kind == EventText {
			out[len(out)-1].Text += ev.Text
			continue
		}
		out = append(out, ev)
	}
	return out
}

func collect(a *arena.Arena, chunks ...string) []Event {
	s := NewStreaming(a)
	var events []Event
	for _, c := range chunks {
		events = append(events, s.Feed(c)...)
	}
	events = append(events, s.Flush()...)
	return merged(events)
}

func TestStreaming_TaggedToolCall(t *testing.T) {
	a := arena.New(0)
	events := collect(a, `Hello <tool_call>{"name":"search","arguments":{"q":"go"}}</tool_call> bye`)

	require.Len(t, events, 3)
	assert.Equal(t, EventText, events[0].Kind)
	assert.Equal(t, "Hello ", events[0].Text)

	require.Equal(t, EventToolCall, events[1].Kind)
	tc := events[1].ToolCall
	assert.Equal(t, "search", tc.Name)
	assert.Equal(t, "go", tc.Arguments.Get("q").StringOr(""))
	assert.Equal(t, `{"name":"search","arguments":{"q":"go"}}`, tc.RawJSON)

	assert.Equal(t, " bye", events[2].Text)
}

func TestStreaming_SplitTagAcrossChunks(t *testing.T) {
	a := arena.New(0)
	events := collect(a, "Hello <tool_c", `all>{"name":"t","arguments":{}}</tool_call>`)

	require.Len(t, events, 2)
	assert.Equal(t, "Hello ", events[0].Text)
	require.Equal(t, EventToolCall, events[1].Kind)
	assert.Equal(t, "t", events[1].ToolCall.Name)
}

func TestStreaming_ChunkInvariance(t *testing.T) {
	input := `pre <think>why not</think> mid {"name":"calc","arguments":{"x":"a}b"}} post ` +
		`<tool_call>{"name":"t2","arguments":{}}</tool_call> end 🎉é`

	want := collect(arena.New(0), input)
	require.Len(t, want, 7)

	for split := 1; split < len(input); split++ {
		got := collect(arena.New(0), input[:split], input[split:])
		require.Equal(t, len(want), len(got), "split at byte %d", split)
		for i := range want {
			assert.Equal(t, want[i].Kind, got[i].Kind, "split %d event %d", split, i)
			assert.Equal(t, want[i].Text, got[i].Text, "split %d event %d", split, i)
			if want[i].Kind == EventToolCall {
				assert.Equal(t, want[i].ToolCall.Name, got[i].ToolCall.Name)
				assert.Equal(t, want[i].ToolCall.RawJSON, got[i].ToolCall.RawJSON)
			}
		}
	}
}

func TestStreaming_UTF8HeldAcrossChunks(t *testing.T) {
	a := arena.New(0)
	s := NewStreaming(a)

	emoji := []byte("🎉")
	ev1 := s.Feed("a" + string(emoji[:2]))
	// The split rune must not leak out half-encoded.
	for _, ev := range ev1 {
		assert.Equal(t, "a", ev.Text)
	}
	ev2 := s.Feed(string(emoji[2:]) + "b")
	ev2 = append(ev2, s.Flush()...)

	var text string
	for _, ev := range append(ev1, ev2...) {
		text += ev.Text
	}
	assert.Equal(t, "a🎉b", text)
}

func TestStreaming_ThinkingTags(t *testing.T) {
	a := arena.New(0)

	events := collect(a, "x<think> deep thought </think>y")
	require.Len(t, events, 3)
	assert.Equal(t, "x", events[0].Text)
	assert.Equal(t, EventThinking, events[1].Kind)
	assert.Equal(t, "deep thought", events[1].Text)
	assert.Equal(t, "y", events[2].Text)

	events = collect(a, "<thinking>hm</thinking>done")
	require.Len(t, events, 2)
	assert.Equal(t, EventThinking, events[0].Kind)
	assert.Equal(t, "hm", events[0].Text)
	assert.Equal(t, "done", events[1].Text)
}

func TestStreaming_BareJSONToolCall(t *testing.T) {
	a := arena.New(0)
	events := collect(a, `ok {"name":"add","arguments":{"a":1,"b":2}} rest`)

	require.Len(t, events, 3)
	assert.Equal(t, "ok ", events[0].Text)
	require.Equal(t, EventToolCall, events[1].Kind)
	assert.Equal(t, "add", events[1].ToolCall.Name)
	n, err := events[1].ToolCall.Arguments.Get("b").AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, " rest", events[2].Text)
}

func TestStreaming_BareJSONNotAToolCall(t *testing.T) {
	a := arena.New(0)

	// Balanced object without name/arguments stays text.
	events := collect(a, `data: {"x":1} tail`)
	require.Len(t, events, 1)
	assert.Equal(t, `data: {"x":1} tail`, events[0].Text)

	// A name key alone is not enough.
	events = collect(a, `{"name":"just a field"}`)
	require.Len(t, events, 1)
	assert.Equal(t, `{"name":"just a field"}`, events[0].Text)
}

func TestStreaming_MalformedToolCallDropped(t *testing.T) {
	a := arena.New(0)
	used := a.Used()
	events := collect(a, "a<tool_call>{not json}</tool_call>b")

	require.Len(t, events, 1)
	assert.Equal(t, "ab", events[0].Text)
	assert.Equal(t, used, a.Used(), "arena space for the failed parse is reclaimed")
}

func TestStreaming_FlushRestoresUnterminated(t *testing.T) {
	a := arena.New(0)

	events := collect(a, `end <tool_call>{"name":"x"`)
	require.Len(t, events, 1)
	assert.Equal(t, `end <tool_call>{"name":"x"`, events[0].Text)

	events = collect(a, "partial <tool_c")
	require.Len(t, events, 1)
	assert.Equal(t, "partial <tool_c", events[0].Text)

	events = collect(a, "<think>never closed")
	require.Len(t, events, 1)
	assert.Equal(t, "<think>never closed", events[0].Text)

	events = collect(a, `{"name":"x","arguments":{`)
	require.Len(t, events, 1)
	assert.Equal(t, `{"name":"x","arguments":{`, events[0].Text)
}

func TestStreaming_UnknownTagIsText(t *testing.T) {
	a := arena.New(0)

	events := collect(a, "a <b>bold</b> and 1 < 2")
	require.Len(t, events, 1)
	assert.Equal(t, "a <b>bold</b> and 1 < 2", events[0].Text)

	// A real tag hidden behind a stray '<' is still found.
	events = collect(a, `<<tool_call>{"name":"t","arguments":{}}</tool_call>`)
	require.Len(t, events, 2)
	assert.Equal(t, "<", events[0].Text)
	assert.Equal(t, EventToolCall, events[1].Kind)
}

func TestStreaming_InToolCall(t *testing.T) {
	s := NewStreaming(arena.New(0))
	assert.False(t, s.InToolCall())

	s.Feed("Hello <tool_c")
	assert.True(t, s.InToolCall(), "partial opening tag")

	s.Feed(`all>{"name":"t"`)
	assert.True(t, s.InToolCall(), "open tag without close")

	s.Feed(`,"arguments":{}}</tool_call>`)
	assert.False(t, s.InToolCall())

	s.Reset()
	s.Feed(`{"name":"t","argu`)
	assert.True(t, s.InToolCall(), "unbalanced bare JSON with a name key")

	s.Reset()
	s.Feed(`{"other":`)
	assert.False(t, s.InToolCall(), "bare JSON without a name key")

	s.Reset()
	s.Feed("<think")
	assert.False(t, s.InToolCall(), "thinking tags are not tool calls")
}

func TestStreaming_Reset(t *testing.T) {
	s := NewStreaming(arena.New(0))
	s.Feed("<tool_call>{")
	s.Reset()

	events := s.Feed("clean")
	events = append(events, s.Flush()...)
	require.Len(t, events, 1)
	assert.Equal(t, "clean", events[0].Text)
}

func TestParse_ThinkingLiftedFirst(t *testing.T) {
	a := arena.New(0)
	events := Parse(a, `intro <think>plan</think> then <tool_call>{"name":"t","arguments":{}}</tool_call>`)

	require.NotEmpty(t, events)
	assert.Equal(t, EventThinking, events[0].Kind)
	assert.Equal(t, "plan", events[0].Text)

	var kinds []EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, EventToolCall)
}

func TestExtractThinking(t *testing.T) {
	th, rest := ExtractThinking("a<think> x </think>b")
	assert.Equal(t, "x", th)
	assert.Equal(t, "ab", rest)

	th, rest = ExtractThinking("<thinking>y</thinking>z")
	assert.Equal(t, "y", th)
	assert.Equal(t, "z", rest)

	// Close tag with no opener: the preamble is the thinking.
	th, rest = ExtractThinking("reasoning here</think>answer")
	assert.Equal(t, "reasoning here", th)
	assert.Equal(t, "answer", rest)

	th, rest = ExtractThinking("no tags at all")
	assert.Empty(t, th)
	assert.Equal(t, "no tags at all", rest)

	// Unterminated open tag is left in place.
	th, rest = ExtractThinking("<think>never closed")
	assert.Empty(t, th)
	assert.Equal(t, "<think>never closed", rest)
}

func TestHasToolCall(t *testing.T) {
	assert.True(t, HasToolCall(`<tool_call>{"name":"t","arguments":{}}</tool_call>`))
	assert.True(t, HasToolCall(`{"name":"t","arguments":{}}`))
	assert.False(t, HasToolCall("plain text"))
	assert.False(t, HasToolCall(`<tool_call>{"name":"t"`))
	assert.False(t, HasToolCall(`{"name":"t"}`), "no arguments key")
}

func TestHasIncompleteToolCall(t *testing.T) {
	assert.True(t, HasIncompleteToolCall("Hello <tool_c"))
	assert.True(t, HasIncompleteToolCall(`<tool_call>{"name":"t"`))
	assert.True(t, HasIncompleteToolCall(`{"name":"t","arguments":{`))
	assert.False(t, HasIncompleteToolCall(`<tool_call>{"name":"t","arguments":{}}</tool_call>`))
	assert.False(t, HasIncompleteToolCall("nothing here"))
	assert.False(t, HasIncompleteToolCall("<think"))
}

func TestTextAroundToolCall(t *testing.T) {
	text := `Before. <tool_call>{"name":"t","arguments":{}}</tool_call> After.`
	assert.Equal(t, "Before.", TextBeforeToolCall(text))
	assert.Equal(t, "After.", TextAfterToolCall(text))

	assert.Equal(t, "no call", TextBeforeToolCall("  no call  "))
	assert.Empty(t, TextAfterToolCall("no call"))
}

func TestFindBareJSON(t *testing.T) {
	text := `lead {"name":"t","arguments":{"s":"}"}} tail`
	start, end, ok := FindBareJSON(text)
	require.True(t, ok)
	assert.Equal(t, `{"name":"t","arguments":{"s":"}"}}`, text[start:end])

	_, _, ok = FindBareJSON(`{"name":"t"}`)
	assert.False(t, ok, "arguments key required")

	_, _, ok = FindBareJSON(`"name" without brace`)
	assert.False(t, ok)

	_, _, ok = FindBareJSON(`{"name":"t","arguments":{`)
	assert.False(t, ok, "unbalanced")
}

func TestParseToolCallJSON(t *testing.T) {
	a := arena.New(0)

	tc, err := ParseToolCallJSON(a, `{"name":"t"}`)
	require.NoError(t, err)
	assert.Equal(t, "t", tc.Name)
	assert.NotNil(t, tc.Arguments, "missing arguments becomes an empty object")
	assert.Equal(t, 0, tc.Arguments.Len())

	_, err = ParseToolCallJSON(a, `{"arguments":{}}`)
	assert.Error(t, err)

	_, err = ParseToolCallJSON(a, `[1,2]`)
	assert.Error(t, err)

	_, err = ParseToolCallJSON(a, `{"name":""}`)
	assert.Error(t, err)
}
