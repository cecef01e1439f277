// Package model defines the generation interface the agent loop drives and a
// scripted mock for tests. Providers stream raw text tokens; tool calls are
// expressed inside the text stream and extracted by the parser, so adapters
// stay thin.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/pocketllm/agentkit/core"
)

// Request captures the normalized input for one generation.
type Request struct {
	// SystemPrompt is injected ahead of the conversation. It already
	// contains the tool-calling instructions and tool descriptions.
	SystemPrompt string
	// Messages is the working conversation history, oldest first.
	Messages []core.Message
}

// Info contains metadata about a generator implementation.
type Info struct {
	Name     string
	Provider string
}

// Generator is the minimal interface required to drive generation. Tokens
// arrive on the first channel; both channels are closed when the generation
// ends. At most one error is sent.
type Generator interface {
	Generate(ctx context.Context, req Request) (<-chan string, <-chan error)

	// Info returns information about the generator implementation.
	Info() Info
}

// GeneratorFunc adapts a plain function to the Generator interface, for
// callers embedding a local inference engine without a full adapter.
type GeneratorFunc func(ctx context.Context, req Request) (<-chan string, <-chan error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (<-chan string, <-chan error) {
	return f(ctx, req)
}

// Info implements Generator.
func (f GeneratorFunc) Info() Info {
	return Info{Name: "func", Provider: "custom"}
}

type mockStep struct {
	text string
	err  error
}

// MockGenerator is a scripted in-memory Generator for tests and examples.
// Each Generate call consumes the next scripted step; text steps stream in
// small chunks to exercise incremental parsing.
type MockGenerator struct {
	mu       sync.Mutex
	steps    []mockStep
	requests []Request

	// ChunkSize controls how many bytes each streamed token carries.
	// Zero means 7, an awkward size on purpose.
	ChunkSize int
}

// NewMockGenerator constructs a mock that replies with the given responses
// in order.
func NewMockGenerator(responses ...string) *MockGenerator {
	m := &MockGenerator{}
	for _, r := range responses {
		m.AddResponse(r)
	}
	return m
}

// AddResponse appends a scripted text reply.
func (m *MockGenerator) AddResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{text: text})
}

// AddError appends a scripted failure.
func (m *MockGenerator) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{err: err})
}

// Requests returns a copy of every request seen so far, for assertions.
func (m *MockGenerator) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (<-chan string, <-chan error) {
	tokens := make(chan string, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var step mockStep
	if len(m.steps) > 0 {
		step = m.steps[0]
		m.steps = m.steps[1:]
	} else {
		step = mockStep{err: fmt.Errorf("mock generator: no scripted response for call %d", len(m.requests))}
	}
	chunk := m.ChunkSize
	m.mu.Unlock()

	if chunk <= 0 {
		chunk = 7
	}

	go func() {
		defer close(tokens)
		defer close(errCh)
		if step.err != nil {
			errCh <- step.err
			return
		}
		text := step.text
		for len(text) > 0 {
			n := chunk
			if n > len(text) {
				n = len(text)
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case tokens <- text[:n]:
				text = text[n:]
			}
		}
	}()
	return tokens, errCh
}

// Info implements Generator.
func (m *MockGenerator) Info() Info {
	return Info{Name: "mock", Provider: "mock"}
}
