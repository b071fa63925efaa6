package ai

import (
	openai "github.com/sashabaranov/go-openai"
)

// toolCallAccumulator collects one tool call from its streamed fragments.
// The API delivers the id and function name early and the JSON arguments in
// arbitrary-sized pieces, keyed by call index.
type toolCallAccumulator struct {
	id        string
	name      string
	arguments string
}

// accumulateToolCalls folds a delta's tool-call fragments into the
// per-index accumulators, growing the slice as new indices appear.
func accumulateToolCalls(acc []toolCallAccumulator, chunks []openai.ToolCall) []toolCallAccumulator {
	for _, chunk := range chunks {
		idx := 0
		if chunk.Index != nil {
			idx = *chunk.Index
		}
		for len(acc) <= idx {
			acc = append(acc, toolCallAccumulator{})
		}
		if chunk.ID != "" {
			acc[idx].id = chunk.ID
		}
		if chunk.Function.Name != "" {
			acc[idx].name = chunk.Function.Name
		}
		acc[idx].arguments += chunk.Function.Arguments
	}
	return acc
}

// assistantToolCalls rebuilds the completed call list for the assistant
// message that precedes the tool results in the conversation.
func assistantToolCalls(acc []toolCallAccumulator) []openai.ToolCall {
	calls := make([]openai.ToolCall, 0, len(acc))
	for _, a := range acc {
		calls = append(calls, openai.ToolCall{
			ID:   a.id,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      a.name,
				Arguments: a.arguments,
			},
		})
	}
	return calls
}
