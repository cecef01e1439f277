package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestMessageConstructors(t *testing.T) {
	u := NewUserMessage("hi")
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "hi", u.Content)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.Timestamp.IsZero())

	s := NewSystemMessage("rules")
	assert.Equal(t, RoleSystem, s.Role)

	a := NewAssistantMessage("sure")
	assert.Equal(t, RoleAssistant, a.Role)

	r := NewToolResultMessage(ToolResult{ToolCallID: "tc-1", Name: "calc", Content: "42"})
	assert.Equal(t, RoleTool, r.Role)
	require.Len(t, r.ToolResults, 1)
	assert.Equal(t, "calc", r.ToolResults[0].Name)
}

func TestNewUserMessageWithImage(t *testing.T) {
	m := NewUserMessageWithImage("look", "image/png", []byte{1, 2, 3})
	require.NotNil(t, m.Image)
	assert.Equal(t, "image/png", m.Image.MimeType)
	assert.Len(t, m.Image.Data, 3)
}
