package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketllm/agentkit/core"
)

func drain(t *testing.T, tokens <-chan string, errCh <-chan error) (string, error) {
	t.Helper()
	var text string
	for tok := range tokens {
		text += tok
	}
	return text, <-errCh
}

func TestMockGenerator_StreamsInChunks(t *testing.T) {
	m := NewMockGenerator("hello world, this is a longer reply")
	m.ChunkSize = 4

	tokens, errCh := m.Generate(context.Background(), Request{})
	var count int
	var text string
	for tok := range tokens {
		assert.LessOrEqual(t, len(tok), 4)
		text += tok
		count++
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "hello world, this is a longer reply", text)
	assert.Greater(t, count, 1)
}

func TestMockGenerator_ScriptedOrder(t *testing.T) {
	m := NewMockGenerator("first", "second")

	tokens, errCh := m.Generate(context.Background(), Request{})
	text, err := drain(t, tokens, errCh)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	tokens, errCh = m.Generate(context.Background(), Request{})
	text, err = drain(t, tokens, errCh)
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	// Script exhausted.
	tokens, errCh = m.Generate(context.Background(), Request{})
	_, err = drain(t, tokens, errCh)
	assert.Error(t, err)
}

func TestMockGenerator_ScriptedError(t *testing.T) {
	m := NewMockGenerator()
	boom := errors.New("boom")
	m.AddError(boom)

	tokens, errCh := m.Generate(context.Background(), Request{})
	_, err := drain(t, tokens, errCh)
	assert.ErrorIs(t, err, boom)
}

func TestMockGenerator_RecordsRequests(t *testing.T) {
	m := NewMockGenerator("ok")
	req := Request{
		SystemPrompt: "be nice",
		Messages:     []core.Message{core.NewUserMessage("hi")},
	}
	tokens, errCh := m.Generate(context.Background(), req)
	_, err := drain(t, tokens, errCh)
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be nice", reqs[0].SystemPrompt)
	require.Len(t, reqs[0].Messages, 1)
	assert.Equal(t, "hi", reqs[0].Messages[0].Content)
}

func TestMockGenerator_ContextCancel(t *testing.T) {
	m := NewMockGenerator(string(make([]byte, 1<<16)))
	m.ChunkSize = 1

	ctx, cancel := context.WithCancel(context.Background())
	tokens, errCh := m.Generate(ctx, Request{})
	<-tokens
	cancel()

	for range tokens {
	}
	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)
}
