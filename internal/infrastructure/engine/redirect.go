package engine

import (
	"fmt"
	"os"

	"github.com/doeshing/jarvish/internal/domain"
)

// openStdinRedirect opens the `<` target of a command, if any.
// The last stdin redirection wins, matching common shell behavior.
func openStdinRedirect(redirects []domain.Redirect) (*os.File, error) {
	var file *os.File
	for _, r := range redirects {
		if r.Kind != domain.RedirectStdinFrom {
			continue
		}
		if file != nil {
			file.Close()
		}
		f, err := os.Open(r.Target)
		if err != nil {
			return nil, fmt.Errorf("jarvish: %s: %w", r.Target, err)
		}
		file = f
	}
	return file, nil
}

// openStdoutRedirect opens the `>` / `>>` target of a command, if any.
// `>` truncates and creates, `>>` appends and creates; the last one wins.
func openStdoutRedirect(redirects []domain.Redirect) (*os.File, error) {
	var file *os.File
	for _, r := range redirects {
		var flags int
		switch r.Kind {
		case domain.RedirectStdoutOverwrite:
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		case domain.RedirectStdoutAppend:
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		default:
			continue
		}
		if file != nil {
			file.Close()
		}
		f, err := os.OpenFile(r.Target, flags, 0o644)
		if err != nil {
			return nil, fmt.Errorf("jarvish: %s: %w", r.Target, err)
		}
		file = f
	}
	return file, nil
}

func hasStdoutRedirect(redirects []domain.Redirect) bool {
	for _, r := range redirects {
		if r.Kind == domain.RedirectStdoutOverwrite || r.Kind == domain.RedirectStdoutAppend {
			return true
		}
	}
	return false
}

func hasStdinRedirect(redirects []domain.Redirect) bool {
	for _, r := range redirects {
		if r.Kind == domain.RedirectStdinFrom {
			return true
		}
	}
	return false
}
