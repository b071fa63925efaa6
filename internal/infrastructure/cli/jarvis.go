// Package cli is the interactive surface: the REPL loop, the line editor
// wiring, and the styled output that distinguishes Jarvis from command
// output.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ansiCyan  = "\x1b[36m"
	ansiDim   = "\x1b[2m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Jarvis renders the assistant's voice on the terminal and implements the
// agent loop's Presenter.
type Jarvis struct {
	out     io.Writer
	in      io.Reader
	spinner *Spinner
}

// NewJarvis builds the presenter writing to stdout.
func NewJarvis() *Jarvis {
	return &Jarvis{
		out:     os.Stdout,
		in:      os.Stdin,
		spinner: NewSpinner(os.Stdout),
	}
}

// SpinnerStart begins the thinking animation.
func (j *Jarvis) SpinnerStart() { j.spinner.Start() }

// SpinnerStop tears the animation down.
func (j *Jarvis) SpinnerStop() { j.spinner.Stop() }

// PrintPrefix marks the start of a streamed assistant reply.
func (j *Jarvis) PrintPrefix() {
	fmt.Fprint(j.out, ansiCyan+"Jarvis: "+ansiReset)
}

// PrintChunk writes one streamed delta as-is.
func (j *Jarvis) PrintChunk(text string) {
	fmt.Fprint(j.out, text)
}

// PrintEnd closes a streamed reply.
func (j *Jarvis) PrintEnd() {
	fmt.Fprintln(j.out)
}

// Notice announces a command the assistant is about to run.
func (j *Jarvis) Notice(text string) {
	fmt.Fprintf(j.out, "%sJarvis is running:%s %s\n", ansiDim, ansiReset, text)
}

// Warn shows a friendly error line from the AI path.
func (j *Jarvis) Warn(text string) {
	fmt.Fprintf(j.out, "%sJarvis:%s %s\n", ansiRed, ansiReset, text)
}

// AskInvestigate offers an error investigation after a failed command.
// Only an explicit y/yes opts in.
func (j *Jarvis) AskInvestigate(exitCode int) bool {
	fmt.Fprintf(j.out, "%sJarvis: exit code %d — shall I investigate? [y/N]%s ",
		ansiDim, exitCode, ansiReset)
	reader := bufio.NewReader(j.in)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
