package engine

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// InputType is the classification of a user input line.
type InputType int

const (
	// InputCommand runs through the execution engine without AI.
	InputCommand InputType = iota
	// InputNatural is routed to the assistant.
	InputNatural
	// InputGoodbye terminates the REPL.
	InputGoodbye
)

// interactivePrograms always get a PTY: they repaint the screen and are
// useless behind a capture pipe.
var interactivePrograms = map[string]struct{}{
	"vim": {}, "nvim": {}, "vi": {}, "nano": {}, "emacs": {},
	"less": {}, "more": {}, "top": {}, "htop": {}, "man": {},
	"ssh": {}, "watch": {}, "tmux": {},
}

// IsInteractive reports whether the program is on the PTY list.
func IsInteractive(name string) bool {
	_, ok := interactivePrograms[filepath.Base(name)]
	return ok
}

// Classifier decides, without calling the AI, whether a line is a shell
// command or natural language. It caches the executable names found on PATH
// at construction so the check is a map lookup.
type Classifier struct {
	mu           sync.RWMutex
	pathCommands map[string]struct{}
	isBuiltin    func(string) bool
	log          *zap.Logger
}

// NewClassifier scans PATH and builds the command-name cache.
func NewClassifier(isBuiltin func(string) bool, log *zap.Logger) *Classifier {
	c := &Classifier{isBuiltin: isBuiltin, log: log}
	c.ReloadPathCache()
	return c
}

// ReloadPathCache rescans PATH. Called after builtins that may change PATH
// (export, unset, source).
func (c *Classifier) ReloadPathCache() {
	commands := make(map[string]struct{})
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			// Follow symlinks; a dangling one is simply skipped.
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || info.IsDir() {
				continue
			}
			commands[entry.Name()] = struct{}{}
		}
	}

	c.mu.Lock()
	c.pathCommands = commands
	c.mu.Unlock()
	c.log.Info("classifier PATH cache built", zap.Int("commands", len(commands)))
}

// InPath reports whether name is a cached PATH executable.
func (c *Classifier) InPath(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pathCommands[name]
	return ok
}

// Classify applies the heuristics in priority order: goodbye triggers,
// natural-language patterns, builtin names, path execution, PATH lookup,
// shell syntax, then natural language as the default.
func (c *Classifier) Classify(input string) InputType {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return InputCommand
	}

	if isGoodbye(trimmed) {
		return InputGoodbye
	}
	if c.isNaturalPattern(trimmed) {
		return InputNatural
	}

	first := firstWord(trimmed)
	if c.isBuiltin != nil && c.isBuiltin(first) {
		return InputCommand
	}
	if isPathExecution(first) {
		return InputCommand
	}
	if c.InPath(first) {
		return InputCommand
	}
	if hasShellSyntax(trimmed) {
		return InputCommand
	}
	return InputNatural
}

var questionStarters = map[string]struct{}{
	"what": {}, "how": {}, "why": {}, "where": {}, "when": {}, "who": {},
	"which": {}, "can": {}, "could": {}, "would": {}, "should": {}, "shall": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "am": {}, "do": {}, "does": {},
	"did": {}, "tell": {}, "explain": {}, "describe": {}, "show": {},
	"please": {}, "help": {},
}

func (c *Classifier) isNaturalPattern(input string) bool {
	lower := strings.ToLower(input)

	if strings.HasSuffix(lower, "?") {
		return true
	}

	// Jarvis triggers.
	if strings.HasPrefix(lower, "jarvis") || strings.HasPrefix(lower, "hey jarvis") {
		return true
	}

	first := firstWord(lower)

	// An apostrophe inside the leading word ("I'm", "what's") is a strong
	// prose signal and would otherwise become a quoting parse error.
	if strings.Contains(first, "'") {
		return true
	}

	if strings.Contains(lower, " ") {
		if _, ok := questionStarters[first]; ok {
			// "which python" is still a command when `which` resolves.
			if !c.InPath(first) && !(c.isBuiltin != nil && c.isBuiltin(first)) {
				return true
			}
		}
	}

	return false
}

func isGoodbye(input string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(input), ",", "")
	switch strings.TrimRight(normalized, ".! ") {
	case "goodbye", "goodbye jarvis", "bye", "bye jarvis", "good night", "good night jarvis":
		return true
	}
	return false
}

// IsAIGoodbye reports whether an assistant reply reads as a farewell, which
// ends the session without repeating the banner.
func IsAIGoodbye(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "goodbye, sir") ||
		strings.Contains(lower, "good night, sir") ||
		strings.Contains(lower, "shutting down now")
}

func isPathExecution(first string) bool {
	return strings.HasPrefix(first, "./") ||
		strings.HasPrefix(first, "../") ||
		strings.HasPrefix(first, "/") ||
		strings.HasPrefix(first, "~/")
}

func hasShellSyntax(input string) bool {
	if strings.Contains(input, "|") ||
		strings.Contains(input, " && ") ||
		strings.Contains(input, " || ") ||
		strings.Contains(input, ";") ||
		strings.HasPrefix(input, "$") {
		return true
	}
	// A KEY=value word (uppercase first letter) anywhere in the line.
	for _, word := range strings.Fields(input) {
		if eq := strings.IndexByte(word, '='); eq > 0 {
			c := word[0]
			if c >= 'A' && c <= 'Z' {
				return true
			}
		}
	}
	return false
}

func firstWord(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
