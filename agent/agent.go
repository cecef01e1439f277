// Package agent implements the bounded orchestration loop: it drives a
// model.Generator, extracts tool calls from the streamed output, executes
// them, feeds results back, and repeats until the model answers without
// calling a tool or the iteration budget runs out.
package agent

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/pocketllm/agentkit/arena"
	"github.com/pocketllm/agentkit/core"
	"github.com/pocketllm/agentkit/jsonval"
	"github.com/pocketllm/agentkit/logging"
	"github.com/pocketllm/agentkit/model"
	"github.com/pocketllm/agentkit/tool"
)

const (
	// DefaultMaxIterations bounds the generate/execute loop per run.
	DefaultMaxIterations = 10
	// DefaultMaxToolResultLen clips tool output fed back to the model.
	DefaultMaxToolResultLen = 3000
)

// ErrAlreadyProcessing is returned by Run when a run is still in flight.
var ErrAlreadyProcessing = errors.New("agent: already processing")

// Step describes what the agent is currently doing, for progress UIs.
type Step int

const (
	// StepNone means the agent is idle.
	StepNone Step = iota
	// StepGenerating means the model is producing output.
	StepGenerating
	// StepThinking means output is streaming but held back because a tool
	// call is being assembled.
	StepThinking
	// StepCallingTool means a tool is executing.
	StepCallingTool
	// StepWaitingForResult means a tool finished and its result is being
	// folded into the conversation.
	StepWaitingForResult
)

// String returns the snake_case step name.
func (s Step) String() string {
	switch s {
	case StepGenerating:
		return "generating"
	case StepThinking:
		return "thinking"
	case StepCallingTool:
		return "calling_tool"
	case StepWaitingForResult:
		return "waiting_for_result"
	default:
		return "none"
	}
}

// StopReason explains why a run ended.
type StopReason int

const (
	// StopCompleted means the model answered without requesting a tool.
	StopCompleted StopReason = iota
	// StopCancelled means Stop was called or the context was cancelled.
	StopCancelled
	// StopMaxIterations means the iteration budget ran out while the model
	// was still requesting tools. The last assistant text is returned.
	StopMaxIterations
	// StopFailed means generation failed; the error returned by Run carries
	// the cause.
	StopFailed
)

// String returns the snake_case reason name.
func (r StopReason) String() string {
	switch r {
	case StopCancelled:
		return "cancelled"
	case StopMaxIterations:
		return "max_iterations"
	case StopFailed:
		return "failed"
	default:
		return "completed"
	}
}

// RunResult is the outcome of one Run.
type RunResult struct {
	// Response is the final assistant text, already stripped of tool-call
	// and thinking markup.
	Response string
	// Thinking is the accumulated reasoning extracted across iterations.
	Thinking string
	// ToolCalls lists every tool call executed during the run, in order.
	// Argument values stay valid until the next Run or Reset.
	ToolCalls []core.ToolCall
	// Iterations is the number of generate/execute cycles performed.
	Iterations int
	StopReason StopReason
}

// ExecuteFunc runs a named tool with parsed arguments and returns its
// textual result. A returned error marks the result as failed but does not
// abort the run; the error text is shown to the model instead.
type ExecuteFunc func(ctx context.Context, name string, args *jsonval.Value) (string, error)

// Options configure an Agent.
type Options struct {
	// Registry describes the available tools. Calls to unregistered names
	// produce error results without invoking ExecuteTool.
	Registry *tool.Registry
	// SystemPrompt is appended after the built-in tool-calling template.
	SystemPrompt string
	// Locale selects the language of generated prompt text.
	Locale tool.Locale
	// MaxIterations bounds the loop; zero means DefaultMaxIterations.
	MaxIterations int
	// MaxToolResultLen clips tool output; zero means DefaultMaxToolResultLen.
	MaxToolResultLen int
	// ArenaSize is the initial arena chunk size; zero picks the default.
	ArenaSize int

	// OnToken receives streamed text as it arrives. Suppressed from the
	// moment the stream looks like it contains an unfinished tool call.
	OnToken func(token string)
	// OnToolCall fires before a tool executes.
	OnToolCall func(name string)
	// OnStep fires on step transitions. toolName is set for StepCallingTool.
	OnStep func(step Step, toolName string)

	Logger logging.Logger
}

// Agent holds conversation state and drives runs. Methods are safe for
// concurrent use, but only one Run may be active at a time.
type Agent struct {
	gen  model.Generator
	exec ExecuteFunc
	opts Options

	logger logging.Logger
	mem    *arena.Arena

	mu      sync.Mutex
	history []core.Message

	step       atomic.Int32
	processing atomic.Bool
	stopped    atomic.Bool
}

// New constructs an Agent around a generator and a tool executor.
func New(gen model.Generator, exec ExecuteFunc, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Locale:           tool.LocaleEN,
		MaxIterations:    DefaultMaxIterations,
		MaxToolResultLen: DefaultMaxToolResultLen,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.MaxToolResultLen <= 0 {
		opts.MaxToolResultLen = DefaultMaxToolResultLen
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Agent{
		gen:    gen,
		exec:   exec,
		opts:   opts,
		logger: logger,
		mem:    arena.New(opts.ArenaSize),
	}
}

// AddUserMessage appends a user turn to the conversation.
func (a *Agent) AddUserMessage(content string) {
	a.append(core.NewUserMessage(content))
}

// AddUserMessageWithImage appends a user turn carrying an inline image.
func (a *Agent) AddUserMessageWithImage(content, mimeType string, data []byte) {
	a.append(core.NewUserMessageWithImage(content, mimeType, data))
}

// AddSystemMessage appends a system turn to the conversation.
func (a *Agent) AddSystemMessage(content string) {
	a.append(core.NewSystemMessage(content))
}

func (a *Agent) append(msg core.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, msg)
}

// Messages returns a copy of the conversation history. Intermediate tool
// turns from past runs are not part of it; only final assistant replies are
// kept.
func (a *Agent) Messages() []core.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Message, len(a.history))
	copy(out, a.history)
	return out
}

// CurrentStep reports what the agent is doing right now.
func (a *Agent) CurrentStep() Step {
	return Step(a.step.Load())
}

// IsProcessing reports whether a run is in flight.
func (a *Agent) IsProcessing() bool {
	return a.processing.Load()
}

// Stop requests cooperative cancellation of the active run. The run winds
// down at the next token or iteration boundary and reports StopCancelled.
func (a *Agent) Stop() {
	a.stopped.Store(true)
}

// Reset clears the conversation and reclaims all arena memory. It must not
// be called while a run is in flight.
func (a *Agent) Reset() error {
	if a.processing.Load() {
		return ErrAlreadyProcessing
	}
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
	a.mem.Reset()
	a.setStep(StepNone, "")
	return nil
}

func (a *Agent) setStep(s Step, toolName string) {
	a.step.Store(int32(s))
	if a.opts.OnStep != nil {
		a.opts.OnStep(s, toolName)
	}
}
