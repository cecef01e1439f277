package agent

import (
	"fmt"
	"strings"

	"github.com/pocketllm/agentkit/tool"
)

const systemPromptEN = "You are a helpful AI assistant. You have access to various tools to help accomplish tasks.\n\n" +
	"When you need to use a tool, output a tool call in this format:\n" +
	"<tool_call>\n" +
	"{\"name\": \"tool_name\", \"arguments\": {\"arg1\": \"value1\"}}\n" +
	"</tool_call>\n\n" +
	"Available tools:\n%s\n"

const systemPromptJA = "あなたは便利なAIアシスタントです。タスクを達成するためにさまざまなツールを使用できます。\n\n" +
	"ツールを使用する必要がある場合は、次の形式でツール呼び出しを出力してください：\n" +
	"<tool_call>\n" +
	"{\"name\": \"ツール名\", \"arguments\": {\"引数1\": \"値1\"}}\n" +
	"</tool_call>\n\n" +
	"利用可能なツール:\n%s\n"

// BuildSystemPrompt assembles the prompt sent ahead of every generation:
// the localized tool-calling template, the registered tool descriptions,
// and any custom system prompt appended at the end.
func (a *Agent) BuildSystemPrompt() string {
	template := systemPromptEN
	if a.opts.Locale == tool.LocaleJA {
		template = systemPromptJA
	}

	var tools string
	if a.opts.Registry != nil {
		tools = a.opts.Registry.Describe(a.opts.Locale)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, template, tools)
	if a.opts.SystemPrompt != "" {
		sb.WriteString("\n\n")
		sb.WriteString(a.opts.SystemPrompt)
	}
	return sb.String()
}
