package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// streamResult is one round's worth of model output: the streamed text
// (already shown) and the accumulated tool calls, if any.
type streamResult struct {
	text        string
	toolCalls   []toolCallAccumulator
	interrupted bool
}

// stream issues one streaming chat request and consumes it. Text deltas go
// to the terminal as they arrive; tool-call deltas accumulate per index. A
// spinner runs until the first delta. Context cancellation (the user's
// interrupt) aborts the in-flight stream and reports interrupted instead
// of an error.
func (c *Client) stream(ctx context.Context, messages []openai.ChatCompletionMessage) (streamResult, error) {
	c.presenter.SpinnerStart()
	spinning := true
	stopSpinner := func() {
		if spinning {
			c.presenter.SpinnerStop()
			spinning = false
		}
	}
	defer stopSpinner()

	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    toolCatalog(),
		Stream:   true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return streamResult{interrupted: true}, nil
		}
		return streamResult{}, fmt.Errorf("create chat stream: %w", err)
	}
	defer stream.Close()

	var result streamResult
	started := false
	chunks := 0

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				result.interrupted = true
				break
			}
			if started {
				c.presenter.PrintEnd()
			}
			return streamResult{}, fmt.Errorf("stream: %w", err)
		}

		chunks++
		for _, choice := range resp.Choices {
			delta := choice.Delta

			if delta.Content != "" {
				stopSpinner()
				if !started {
					c.presenter.PrintPrefix()
					started = true
				}
				c.presenter.PrintChunk(delta.Content)
				result.text += delta.Content
			}

			if len(delta.ToolCalls) > 0 {
				stopSpinner()
				result.toolCalls = accumulateToolCalls(result.toolCalls, delta.ToolCalls)
			}
		}
	}

	if started {
		c.presenter.PrintEnd()
	}

	c.log.Debug("stream finished",
		zap.Int("chunks", chunks),
		zap.Int("text_length", len(result.text)),
		zap.Int("tool_calls", len(result.toolCalls)),
		zap.Bool("interrupted", result.interrupted))

	return result, nil
}
