// Package core defines the conversation primitives shared by models, tools
// and the agent loop: roles, messages, tool calls and tool results.
package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/pocketllm/agentkit/jsonval"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleSystem carries instructions injected ahead of the conversation.
	RoleSystem Role = "system"
	// RoleUser is input from the human or calling application.
	RoleUser Role = "user"
	// RoleAssistant is model output.
	RoleAssistant Role = "assistant"
	// RoleTool carries tool execution results back to the model.
	RoleTool Role = "tool"
)

// NewID generates a unique identifier for messages, tool calls and runs.
func NewID() string {
	return uuid.NewString()
}

// ToolCall is a tool invocation requested by the assistant.
type ToolCall struct {
	// ID is assigned when the call is accepted for execution.
	ID string
	// Name is the registered tool name.
	Name string
	// Arguments is the parsed argument object. It references arena memory
	// owned by the agent that produced it and stays valid until that agent's
	// next Run or Reset; RawJSON is the durable form.
	Arguments *jsonval.Value
	// RawJSON is the JSON text the call was parsed from.
	RawJSON string
}

// ToolResult is the outcome of executing a ToolCall.
type ToolResult struct {
	ID         string
	ToolCallID string
	// Name is the tool that produced the result.
	Name string
	// Content is the textual result fed back to the model, already clipped
	// to the configured maximum length.
	Content string
	// IsError marks a failed execution. Failed tools do not abort the run;
	// the error text is surfaced to the model instead.
	IsError bool
}

// ImageData is an inline image attachment on a user message.
type ImageData struct {
	MimeType string
	Data     []byte
}

// Message is one turn of a conversation.
type Message struct {
	ID      string
	Role    Role
	Content string
	// Thinking holds reasoning extracted from assistant output. It is kept
	// out of Content so callers can decide whether to display it.
	Thinking    string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
	Image       *ImageData
	Timestamp   time.Time
}

// NewUserMessage builds a user turn.
func NewUserMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewUserMessageWithImage builds a user turn carrying an inline image.
func NewUserMessageWithImage(content, mimeType string, data []byte) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleUser,
		Content:   content,
		Image:     &ImageData{MimeType: mimeType, Data: data},
		Timestamp: time.Now(),
	}
}

// NewSystemMessage builds a system turn.
func NewSystemMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleSystem, Content: content, Timestamp: time.Now()}
}

// NewAssistantMessage builds an assistant turn.
func NewAssistantMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// NewToolResultMessage builds a tool turn wrapping one result.
func NewToolResultMessage(result ToolResult) Message {
	return Message{
		ID:          NewID(),
		Role:        RoleTool,
		ToolResults: []ToolResult{result},
		Timestamp:   time.Now(),
	}
}
