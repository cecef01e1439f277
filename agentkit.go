// Package agentkit provides a high-level façade over the agent runtime:
// an arena-backed JSON engine, a chunk-invariant streaming parser for
// tag-based tool calls, a tool registry with schema generation, and a
// bounded orchestration loop. Most applications interact with this package
// by:
//  1. Building a tool registry (NewRegistry, or LoadTools from YAML)
//  2. Picking a generator (model/openai, model/anthropic, or a custom one)
//  3. Creating an agent via NewAgent and calling Run
//
// The façade delegates to the agent package while keeping setup concise.
// Defaults are safe for local development; production callers typically
// supply a structured logger and tuned iteration budgets.
package agentkit

import (
	"github.com/pocketllm/agentkit/agent"
	"github.com/pocketllm/agentkit/model"
	"github.com/pocketllm/agentkit/tool"
)

// NewAgent creates an orchestration agent around a generator and a tool
// executor. See agent.Options for configuration.
func NewAgent(gen model.Generator, exec agent.ExecuteFunc, optFns ...func(o *agent.Options)) *agent.Agent {
	return agent.New(gen, exec, optFns...)
}

// NewRegistry builds a tool registry from the given definitions.
func NewRegistry(defs ...tool.Definition) (*tool.Registry, error) {
	r := tool.NewRegistry()
	if err := r.RegisterAll(defs...); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadTools reads tool definitions from a YAML file.
func LoadTools(path string) ([]tool.Definition, error) {
	return tool.LoadDefinitionsFile(path)
}
