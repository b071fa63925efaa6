package domain

// Config is the process-wide configuration snapshot loaded at startup.
// It is never mutated after load; the `source` builtin replaces it wholesale.
type Config struct {
	AI     AIConfig          `toml:"ai"`
	Alias  map[string]string `toml:"alias"`
	Export map[string]string `toml:"export"`
	Prompt PromptConfig      `toml:"prompt"`
}

// AIConfig configures the assistant.
type AIConfig struct {
	// Model is the identifier passed to the chat-completions API.
	Model string `toml:"model"`
	// MaxRounds caps the number of model requests per agent-loop turn.
	MaxRounds int `toml:"max_rounds"`
}

// PromptConfig configures prompt rendering.
type PromptConfig struct {
	NerdFont bool `toml:"nerd_font"`
}

// DefaultConfig returns the built-in defaults used when the config file is
// missing or a section is omitted.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Model:     "gpt-4o",
			MaxRounds: 10,
		},
		Alias:  map[string]string{},
		Export: map[string]string{},
	}
}
