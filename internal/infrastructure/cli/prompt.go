package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/jarvish/internal/domain"
)

// BuildPrompt renders the shell prompt: working directory base, a failure
// marker when the last command exited non-zero, and the arrow glyph
// (a nerd-font chevron when configured).
func BuildPrompt(opts domain.PromptConfig, lastExit int) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	}
	base := filepath.Base(cwd)
	if home := os.Getenv("HOME"); home != "" && cwd == home {
		base = "~"
	}

	arrow := "> "
	if opts.NerdFont {
		arrow = "❯ "
	}

	marker := ""
	if lastExit != 0 {
		marker = fmt.Sprintf("%s[%d]%s ", ansiRed, lastExit, ansiReset)
	}

	return fmt.Sprintf("%s%s%s %s%s", ansiCyan, base, ansiReset, marker, arrow)
}
