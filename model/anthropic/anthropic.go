// Package anthropic adapts the Anthropic Messages API to the generic
// model.Generator interface. Tool calling happens at the text level, so the
// adapter only converts history and streams text deltas. Inline images on
// user messages are forwarded as base64 image blocks.
package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pocketllm/agentkit/core"
	"github.com/pocketllm/agentkit/model"
)

// Options configures the Anthropic adapter (temperature, model id, max
// tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Generator wraps the Anthropic Messages API behind model.Generator.
type Generator struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// New creates a generator using the official client.
func New(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Generator{client: &client, opts: opts}
}

// NewFromClient creates a generator from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate implements model.Generator by streaming text deltas.
func (g *Generator) Generate(ctx context.Context, req model.Request) (<-chan string, <-chan error) {
	tokens := make(chan string, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       g.opts.Model,
			Messages:    buildMessages(req),
			MaxTokens:   g.opts.MaxTokens,
			Temperature: anthropic.Float(g.opts.Temperature),
		}
		if req.SystemPrompt != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
		}

		stream := g.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case tokens <- delta.Text:
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		}
	}()
	return tokens, errCh
}

// buildMessages converts the normalized history into Anthropic messages.
// System turns fold into user turns since the system prompt travels
// separately; tool results travel as user turns for the tag protocol.
func buildMessages(req model.Request) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleUser, core.RoleSystem:
			blocks := []anthropic.ContentBlockParamUnion{}
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			if m.Image != nil {
				encoded := base64.StdEncoding.EncodeToString(m.Image.Data)
				blocks = append(blocks, anthropic.NewImageBlockBase64(m.Image.MimeType, encoded))
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewUserMessage(blocks...))
			}
		case core.RoleAssistant:
			if m.Content != "" {
				messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			}
		case core.RoleTool:
			for _, tr := range m.ToolResults {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(formatToolResult(tr))))
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

// Info returns metadata describing this Anthropic generator.
func (g *Generator) Info() model.Info {
	return model.Info{Name: string(g.opts.Model), Provider: "anthropic"}
}
