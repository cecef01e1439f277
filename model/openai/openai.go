// Package openai adapts the OpenAI Chat Completions API to the generic
// model.Generator interface. Tool calling happens at the text level, so the
// adapter only converts history and streams content deltas; native function
// calling is deliberately not used. Inline images are not forwarded.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/pocketllm/agentkit/core"
	"github.com/pocketllm/agentkit/model"
)

// Options configure the OpenAI adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Generator wraps the OpenAI Chat Completions API behind model.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

// New creates a generator using the default client, configured from the
// environment.
func New(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a generator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements model.Generator by streaming content deltas.
func (g *Generator) Generate(ctx context.Context, req model.Request) (<-chan string, <-chan error) {
	tokens := make(chan string, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(errCh)

		params := openai.ChatCompletionNewParams{
			Messages:            buildMessages(req),
			Model:               g.opts.Model,
			Temperature:         openai.Float(g.opts.Temperature),
			MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
		}

		stream := g.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			ck := stream.Current()
			for _, ch := range ck.Choices {
				if ch.Delta.Content == "" {
					continue
				}
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case tokens <- ch.Delta.Content:
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
		}
	}()
	return tokens, errCh
}

// buildMessages converts the normalized history into chat messages. Tool
// results travel as user turns because the tag protocol keeps OpenAI unaware
// of native tool calls.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case core.RoleTool:
			for _, tr := range m.ToolResults {
				messages = append(messages, openai.UserMessage(formatToolResult(tr)))
			}
		}
	}
	return messages
}

func formatToolResult(tr core.ToolResult) string {
	if tr.IsError {
		return fmt.Sprintf("Tool %s failed: %s", tr.Name, tr.Content)
	}
	return fmt.Sprintf("Tool %s result: %s", tr.Name, tr.Content)
}

// Info returns metadata describing this OpenAI generator.
func (g *Generator) Info() model.Info {
	return model.Info{Name: g.opts.Model, Provider: "openai"}
}
