// Command agentkit is a small chat REPL around the agent runtime, mainly
// useful for trying out tool definitions and prompt changes locally.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/pocketllm/agentkit/agent"
	"github.com/pocketllm/agentkit/jsonval"
	"github.com/pocketllm/agentkit/logging"
	"github.com/pocketllm/agentkit/model"
	"github.com/pocketllm/agentkit/model/anthropic"
	"github.com/pocketllm/agentkit/model/openai"
	"github.com/pocketllm/agentkit/tool"
)

func main() {
	// Missing .env is fine; API keys may come from the environment.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "agentkit",
		Usage: "chat with a tool-calling agent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: "model provider: openai, anthropic or mock",
				Value: "openai",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "override the provider's default model id",
			},
			&cli.StringFlag{
				Name:  "system",
				Usage: "extra system prompt appended after the tool instructions",
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "prompt language: en or ja",
				Value: "en",
			},
			&cli.StringFlag{
				Name:  "tools",
				Usage: "YAML file with additional tool definitions",
			},
			&cli.IntFlag{
				Name:  "max-iterations",
				Usage: "tool-call iteration budget per turn",
				Value: agent.DefaultMaxIterations,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "tools",
				Usage: "print the tool descriptions the model would see",
				Action: func(_ context.Context, cmd *cli.Command) error {
					reg, err := buildRegistry(cmd.String("tools"))
					if err != nil {
						return err
					}
					fmt.Println(reg.Describe(tool.Locale(cmd.String("locale"))))
					return nil
				},
			},
		},
		Action: runChat,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := logging.NewTintLogger(os.Stderr, level)

	gen, err := buildGenerator(cmd.String("provider"), cmd.String("model"))
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cmd.String("tools"))
	if err != nil {
		return err
	}

	a := agent.New(gen, executeBuiltin, func(o *agent.Options) {
		o.Registry = reg
		o.SystemPrompt = cmd.String("system")
		o.Locale = tool.Locale(cmd.String("locale"))
		o.MaxIterations = int(cmd.Int("max-iterations"))
		o.Logger = logger
		o.OnToken = func(tok string) { fmt.Print(tok) }
		o.OnToolCall = func(name string) { fmt.Printf("\n[tool: %s]\n", name) }
	})

	info := gen.Info()
	fmt.Printf("agentkit — %s/%s, %d tools. /reset clears, /quit exits.\n",
		info.Provider, info.Name, reg.Len())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/reset":
			if err := a.Reset(); err != nil {
				return err
			}
			fmt.Println("conversation cleared")
			continue
		}

		a.AddUserMessage(line)
		result, err := a.Run(ctx)
		if err != nil {
			logger.Error("run failed", "error", err)
			continue
		}
		fmt.Println()
		if result.StopReason != agent.StopCompleted {
			fmt.Printf("[stopped: %s after %d iterations]\n", result.StopReason, result.Iterations)
		}
	}
}

func buildGenerator(provider, modelID string) (model.Generator, error) {
	switch provider {
	case "openai":
		return openai.New(func(o *openai.Options) {
			if modelID != "" {
				o.Model = modelID
			}
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if modelID != "" {
				o.Model = anthropicsdk.Model(modelID)
			}
		}), nil
	case "mock":
		return model.NewMockGenerator(
			`<tool_call>{"name":"get_time","arguments":{}}</tool_call>`,
			"The mock provider only knows the time, and it just told you.",
		), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// buildRegistry registers the built-in demo tools and anything from the
// optional YAML file.
func buildRegistry(path string) (*tool.Registry, error) {
	reg := tool.NewRegistry()
	err := reg.RegisterAll(
		tool.Definition{
			Name:        "get_time",
			Description: "Current date and time on this machine",
		},
		tool.Definition{
			Name:        "add",
			Description: "Add two numbers",
			Properties: []tool.Property{
				tool.NumberProperty("a", "First operand", true),
				tool.NumberProperty("b", "Second operand", true),
			},
		},
	)
	if err != nil {
		return nil, err
	}
	if path != "" {
		defs, err := tool.LoadDefinitionsFile(path)
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterAll(defs...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func executeBuiltin(_ context.Context, name string, args *jsonval.Value) (string, error) {
	switch name {
	case "get_time":
		return time.Now().Format(time.RFC1123), nil
	case "add":
		a, err := args.Get("a").AsDouble()
		if err != nil {
			return "", fmt.Errorf("argument a: %w", err)
		}
		b, err := args.Get("b").AsDouble()
		if err != nil {
			return "", fmt.Errorf("argument b: %w", err)
		}
		return jsonval.Serialize(jsonval.Double(a+b), false), nil
	default:
		return "", fmt.Errorf("tool %s has no local implementation", name)
	}
}
