// Package ai is the router and agent loop: it holds the chat client,
// streams model replies to the terminal, executes tool calls locally, and
// feeds results back until the model produces a final textual answer.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
	"github.com/doeshing/jarvish/internal/ports"
)

// Presenter is the terminal surface the agent loop talks through: spinner
// while the model thinks, styled chunks while it streams.
type Presenter interface {
	SpinnerStart()
	SpinnerStop()
	PrintPrefix()
	PrintChunk(text string)
	PrintEnd()
	Notice(text string)
}

// Client drives streaming tool-use conversations against the
// chat-completions API.
type Client struct {
	api       *openai.Client
	model     string
	maxRounds int
	tools     *toolExecutor
	presenter Presenter
	log       *zap.Logger
}

// Conversation is the message sequence of one natural-language turn (or a
// continued exchange). Discarded on cancellation.
type Conversation struct {
	messages []openai.ChatCompletionMessage
}

// Result summarizes one completed agent-loop turn.
type Result struct {
	// Text is the assistant's streamed answer (already printed).
	Text string
	// RanCommand is true when at least one execute_shell_command ran.
	RanCommand bool
	// LastExitCode is the exit code of the last shell command the model ran.
	LastExitCode int
	// Interrupted is true when the user cancelled the turn.
	Interrupted bool
	// RoundsExhausted is true when the loop hit the round ceiling.
	RoundsExhausted bool
}

// NewClient builds the assistant client. A missing OPENAI_API_KEY disables
// the AI path: the caller gets an error and shows a friendly message.
func NewClient(cfg domain.AIConfig, runner ports.CommandRunner, presenter Presenter, log *zap.Logger) (*Client, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" || key == "your_openai_api_key" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 10
	}

	return &Client{
		api:       openai.NewClient(key),
		model:     cfg.Model,
		maxRounds: maxRounds,
		tools:     &toolExecutor{runner: runner, log: log},
		presenter: presenter,
		log:       log,
	}, nil
}

// ApplyConfig updates the model settings after a `source` reload.
func (c *Client) ApplyConfig(cfg domain.AIConfig) {
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if cfg.MaxRounds > 0 {
		c.maxRounds = cfg.MaxRounds
	}
}

// NewConversation opens a conversation seeded with the system prompt and,
// when available, recent command history as context.
func (c *Client) NewConversation(historyContext string) *Conversation {
	return newConversation(systemPrompt, historyContext)
}

// NewInvestigation opens a conversation primed to diagnose a failed command.
func (c *Client) NewInvestigation(historyContext string) *Conversation {
	return newConversation(investigationPrompt, historyContext)
}

func newConversation(system, historyContext string) *Conversation {
	content := system
	if historyContext != "" {
		content = system + "\n\n" + historyContext
	}
	return &Conversation{messages: []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: content,
	}}}
}

// InvestigationInput formats a failed command for the investigation turn.
func InvestigationInput(line string, res domain.CommandResult) string {
	return fmt.Sprintf(
		"The command `%s` failed with exit code %d.\nstdout:\n%s\nstderr:\n%s",
		line, res.ExitCode, res.Stdout, res.Stderr)
}

// Converse appends the user input and runs the agent loop: stream a reply,
// execute any tool calls in order, append their results, repeat. The loop
// is bounded by max_rounds and aborts promptly on context cancellation.
func (c *Client) Converse(ctx context.Context, conv *Conversation, input string) (Result, error) {
	conv.messages = append(conv.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	turn := uuid.NewString()
	var result Result

	for round := 1; round <= c.maxRounds; round++ {
		c.log.Debug("agent round starting",
			zap.String("turn", turn), zap.Int("round", round))

		sr, err := c.stream(ctx, conv.messages)
		if err != nil {
			return Result{}, err
		}
		result.Text += sr.text
		if sr.interrupted {
			result.Interrupted = true
			return result, nil
		}
		if len(sr.toolCalls) == 0 {
			return result, nil
		}

		conv.messages = append(conv.messages, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   sr.text,
			ToolCalls: assistantToolCalls(sr.toolCalls),
		})

		// Tool results are appended in the same order as the call list.
		for _, call := range sr.toolCalls {
			if call.name == toolExecuteShellCommand {
				if cmd := commandArgument(call.arguments); cmd != "" {
					c.presenter.Notice(cmd)
				}
			}
			output, cmdRes := c.tools.execute(ctx, call.name, call.arguments)
			if cmdRes != nil {
				result.RanCommand = true
				result.LastExitCode = cmdRes.ExitCode
			}
			conv.messages = append(conv.messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.id,
			})
			if ctx.Err() != nil {
				result.Interrupted = true
				return result, nil
			}
		}
	}

	c.log.Warn("agent loop hit round ceiling",
		zap.String("turn", turn), zap.Int("max_rounds", c.maxRounds))
	result.RoundsExhausted = true
	return result, nil
}
