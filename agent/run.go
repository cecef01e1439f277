package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketllm/agentkit/core"
	"github.com/pocketllm/agentkit/model"
	"github.com/pocketllm/agentkit/parser"
	"github.com/pocketllm/agentkit/textutil"
)

// runState carries per-run bookkeeping across iterations.
type runState struct {
	working   []core.Message
	toolCalls []core.ToolCall
	thinking  strings.Builder
}

// Run executes the orchestration loop until the model answers without a
// tool call, the iteration budget runs out, the run is stopped, or a
// generation fails. Only generation failures are reported as errors; budget
// exhaustion and cancellation are normal outcomes described by StopReason.
func (a *Agent) Run(ctx context.Context) (RunResult, error) {
	if !a.processing.CompareAndSwap(false, true) {
		return RunResult{}, ErrAlreadyProcessing
	}
	defer func() {
		a.processing.Store(false)
		a.setStep(StepNone, "")
	}()
	a.stopped.Store(false)

	// Arena contents from the previous run die here. Anything handed out
	// earlier (parsed arguments in old RunResults) must not be used anymore.
	a.mem.Reset()

	rs := &runState{working: a.Messages()}
	systemPrompt := a.BuildSystemPrompt()

	var result RunResult
	hasToolCall := true
	for hasToolCall && result.Iterations < a.opts.MaxIterations {
		result.Iterations++
		a.logger.Debug("iteration start", "iteration", result.Iterations)

		var err error
		hasToolCall, err = a.iterate(ctx, systemPrompt, rs)
		if err != nil {
			a.logger.Error("generation failed", "iteration", result.Iterations, "error", err)
			result.StopReason = StopFailed
			return result, err
		}
		if a.cancelled(ctx) {
			result.StopReason = StopCancelled
			a.finishRun(rs, &result)
			return result, nil
		}
	}

	if hasToolCall {
		result.StopReason = StopMaxIterations
		a.logger.Warn("iteration budget exhausted", "iterations", result.Iterations)
	}
	a.finishRun(rs, &result)
	return result, nil
}

func (a *Agent) cancelled(ctx context.Context) bool {
	return a.stopped.Load() || ctx.Err() != nil
}

// finishRun extracts the final response from the working history and commits
// it to the conversation.
func (a *Agent) finishRun(rs *runState, result *RunResult) {
	for i := len(rs.working) - 1; i >= 0; i-- {
		if rs.working[i].Role == core.RoleAssistant {
			result.Response = rs.working[i].Content
			break
		}
	}
	result.Thinking = strings.TrimSpace(rs.thinking.String())
	result.ToolCalls = rs.toolCalls

	if result.Response == "" {
		return
	}
	final := core.NewAssistantMessage(result.Response)
	final.Thinking = result.Thinking
	final.ToolCalls = rs.toolCalls
	a.append(final)
}

// iterate performs one generate/parse/execute cycle. It reports whether the
// model requested at least one tool call.
func (a *Agent) iterate(ctx context.Context, systemPrompt string, rs *runState) (bool, error) {
	response, err := a.generate(ctx, systemPrompt, rs.working)
	if err != nil {
		return false, err
	}
	if a.cancelled(ctx) {
		return false, nil
	}

	events := parser.Parse(a.mem, response)

	var text strings.Builder
	var calls []core.ToolCall
	for _, ev := range events {
		switch ev.Kind {
		case parser.EventText:
			text.WriteString(ev.Text)
		case parser.EventThinking:
			if rs.thinking.Len() > 0 {
				rs.thinking.WriteString("\n")
			}
			rs.thinking.WriteString(ev.Text)
		case parser.EventToolCall:
			calls = append(calls, core.ToolCall{
				ID:        core.NewID(),
				Name:      ev.ToolCall.Name,
				Arguments: ev.ToolCall.Arguments,
				RawJSON:   ev.ToolCall.RawJSON,
			})
		}
	}

	for _, tc := range calls {
		rs.toolCalls = append(rs.toolCalls, tc)
		result := a.executeTool(ctx, tc)
		rs.working = append(rs.working, core.NewToolResultMessage(result))
	}

	// The assistant turn is recorded when it says something, or always on
	// the final (tool-free) iteration so the answer is not lost.
	content := strings.TrimSpace(text.String())
	if content != "" || len(calls) == 0 {
		msg := core.NewAssistantMessage(content)
		msg.ToolCalls = calls
		rs.working = append(rs.working, msg)
	}
	return len(calls) > 0, nil
}

// generate streams one model response to completion, forwarding tokens to
// OnToken until the stream looks like it contains an unfinished tool call.
func (a *Agent) generate(ctx context.Context, systemPrompt string, working []core.Message) (string, error) {
	a.setStep(StepGenerating, "")

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tokens, errCh := a.gen.Generate(genCtx, model.Request{
		SystemPrompt: systemPrompt,
		Messages:     working,
	})

	// The probe parser only tracks state for suppression; its events are
	// discarded and its arena space reclaimed below.
	sp := a.mem.Savepoint()
	probe := parser.NewStreaming(a.mem)
	detected := false

	var response strings.Builder
	for tok := range tokens {
		if a.stopped.Load() {
			cancel()
			for range tokens {
			}
			break
		}
		response.WriteString(tok)
		probe.Feed(tok)
		if !detected && probe.InToolCall() {
			detected = true
			a.setStep(StepThinking, "")
		}
		if !detected && a.opts.OnToken != nil {
			a.opts.OnToken(tok)
		}
	}
	err := <-errCh
	a.mem.Restore(sp)

	if err != nil && a.cancelled(ctx) {
		// Cancellation surfaces as a stream error; the loop handles it as
		// a stop, not a failure.
		return response.String(), nil
	}
	if err != nil {
		return "", fmt.Errorf("agent: generate: %w", err)
	}
	return response.String(), nil
}

// executeTool runs one tool call and shapes its outcome into a ToolResult.
// Unknown tools and executor errors become error results the model can react
// to; they never abort the run.
func (a *Agent) executeTool(ctx context.Context, tc core.ToolCall) core.ToolResult {
	if a.opts.OnToolCall != nil {
		a.opts.OnToolCall(tc.Name)
	}
	a.setStep(StepCallingTool, tc.Name)

	result := core.ToolResult{
		ID:         core.NewID(),
		ToolCallID: tc.ID,
		Name:       tc.Name,
	}

	switch {
	case a.opts.Registry != nil && !a.opts.Registry.Has(tc.Name):
		result.IsError = true
		result.Content = fmt.Sprintf("Unknown tool: %s", tc.Name)
		a.logger.Warn("unknown tool requested", "tool", tc.Name)
	case a.exec == nil:
		result.IsError = true
		result.Content = "No tool executor configured"
	default:
		content, err := a.exec(ctx, tc.Name, tc.Arguments)
		if err != nil {
			result.IsError = true
			result.Content = err.Error()
			a.logger.Warn("tool failed", "tool", tc.Name, "error", err)
		} else {
			result.Content = content
		}
	}

	result.Content = textutil.Truncate(result.Content, a.opts.MaxToolResultLen)
	a.setStep(StepWaitingForResult, "")
	return result
}
