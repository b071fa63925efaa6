package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
	"github.com/doeshing/jarvish/internal/ports"
)

const (
	toolExecuteShellCommand = "execute_shell_command"
	toolReadFile            = "read_file"
	toolWriteFile           = "write_file"
)

// toolCatalog is the function set exposed to the model.
func toolCatalog() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolExecuteShellCommand,
				Description: "Execute a shell command on the user's machine and observe its output. Use this when the user's request is best solved by running a command.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"command": {
							"type": "string",
							"description": "The full shell command to execute"
						}
					},
					"required": ["command"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolReadFile,
				Description: "Read the contents of a file. Use this to inspect a file before editing it. The path is relative to the user's current working directory.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"path": {
							"type": "string",
							"description": "The file path to read (relative to CWD)"
						}
					},
					"required": ["path"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolWriteFile,
				Description: "Write content to a file, creating it if it doesn't exist or overwriting if it does. Always read_file first before writing to preserve existing content. The path is relative to the user's current working directory.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"path": {
							"type": "string",
							"description": "The file path to write to (relative to CWD)"
						},
						"content": {
							"type": "string",
							"description": "The complete file content to write"
						}
					},
					"required": ["path", "content"]
				}`),
			},
		},
	}
}

// toolExecutor runs tool calls locally. Errors are encoded into the result
// text so the model can react; they never propagate as shell errors.
type toolExecutor struct {
	runner ports.CommandRunner
	log    *zap.Logger
}

// execute dispatches one tool call. For execute_shell_command the engine's
// CommandResult is also returned so the caller can track exit codes.
func (t *toolExecutor) execute(ctx context.Context, name, arguments string) (string, *domain.CommandResult) {
	t.log.Debug("executing tool", zap.String("tool", name))

	switch name {
	case toolReadFile:
		return t.readFile(arguments), nil
	case toolWriteFile:
		return t.writeFile(arguments), nil
	case toolExecuteShellCommand:
		return t.shellCommand(ctx, arguments)
	}
	t.log.Warn("unknown tool called", zap.String("tool", name))
	return fmt.Sprintf("Error: unknown tool %q", name), nil
}

func (t *toolExecutor) readFile(arguments string) string {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return fmt.Sprintf("Error parsing arguments: %v", err)
	}
	if args.Path == "" {
		return "Error: 'path' parameter is required"
	}

	content, err := os.ReadFile(args.Path)
	if err != nil {
		return fmt.Sprintf("Error reading file '%s': %v", args.Path, err)
	}
	return string(content)
}

func (t *toolExecutor) writeFile(arguments string) string {
	var args struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return fmt.Sprintf("Error parsing arguments: %v", err)
	}
	if args.Path == "" {
		return "Error: 'path' parameter is required"
	}

	if dir := filepath.Dir(args.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Sprintf("Error creating directory for '%s': %v", args.Path, err)
		}
	}
	if err := os.WriteFile(args.Path, []byte(args.Content), 0o644); err != nil {
		return fmt.Sprintf("Error writing file '%s': %v", args.Path, err)
	}
	return fmt.Sprintf("Successfully wrote %d bytes to '%s'", len(args.Content), args.Path)
}

func (t *toolExecutor) shellCommand(ctx context.Context, arguments string) (string, *domain.CommandResult) {
	var args struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return fmt.Sprintf("Error parsing arguments: %v", err), nil
	}
	if args.Command == "" {
		return "Error: 'command' parameter is required", nil
	}

	res := t.runner.Run(ctx, args.Command)
	return fmt.Sprintf("exit code: %d\nstdout:\n%s\nstderr:\n%s",
		res.ExitCode, res.Stdout, res.Stderr), &res
}

// commandArgument extracts the command string from an
// execute_shell_command argument payload, or "" when it cannot be parsed.
func commandArgument(arguments string) string {
	var args struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}
	return args.Command
}
