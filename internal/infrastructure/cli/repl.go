package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
	"github.com/doeshing/jarvish/internal/infrastructure/ai"
	"github.com/doeshing/jarvish/internal/infrastructure/blackbox"
	"github.com/doeshing/jarvish/internal/infrastructure/engine"
)

// Shell is the REPL: it owns the line editor, the engine, the black box
// handle, the assistant client, and the per-turn conversation state.
type Shell struct {
	rl      *readline.Instance
	engine  *engine.Engine
	index   *blackbox.Index // nil when the black box failed to open
	assist  *ai.Client      // nil when OPENAI_API_KEY is absent
	jarvis  *Jarvis
	cfg     domain.Config
	log     *zap.Logger
	dataDir string

	conv          *ai.Conversation
	lastExit      int
	farewellShown bool
}

// NewShell wires the REPL and its line editor. The editor keeps its own
// arrow-key history file under the data directory, separate from the
// black box.
func NewShell(eng *engine.Engine, index *blackbox.Index, assist *ai.Client,
	jarvis *Jarvis, cfg domain.Config, dataDir string, log *zap.Logger) (*Shell, error) {

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          BuildPrompt(cfg.Prompt, 0),
		HistoryFile:     filepath.Join(dataDir, "readline_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	s := &Shell{
		rl:      rl,
		engine:  eng,
		index:   index,
		assist:  assist,
		jarvis:  jarvis,
		cfg:     cfg,
		log:     log,
		dataDir: dataDir,
	}

	// `source` swaps the config snapshot in place.
	eng.Builtins().SetReloadHook(func(next domain.Config) {
		s.cfg = next
		if s.assist != nil {
			s.assist.ApplyConfig(next.AI)
		}
		eng.Classifier().ReloadPathCache()
	})

	return s, nil
}

// Run drives the REPL until exit, EOF, or a goodbye. It returns the
// process exit code: the last command's on plain exit, or the code given
// to the exit builtin.
func (s *Shell) Run() int {
	defer s.rl.Close()
	PrintWelcome()

	exitCode := 0
	for {
		s.rl.SetPrompt(BuildPrompt(s.cfg.Prompt, s.lastExit))

		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			exitCode = s.lastExit
			break
		}
		if err != nil {
			s.log.Warn("line editor error", zap.Error(err))
			exitCode = 1
			break
		}

		keepGoing, code := s.handleInput(line)
		if !keepGoing {
			exitCode = code
			break
		}
	}

	if !s.farewellShown {
		PrintGoodbye()
	}
	return exitCode
}

// handleInput processes one line: alias expansion, the builtin fast path,
// classification, and dispatch to the engine or the assistant. It returns
// whether the REPL continues and, when it does not, the exit code.
func (s *Shell) handleInput(raw string) (bool, int) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return true, 0
	}

	if expanded, ok := engine.ExpandAlias(line, s.engine.Builtins().Aliases()); ok {
		s.log.Debug("alias expanded", zap.String("from", line), zap.String("to", expanded))
		line = expanded
	}

	// Builtins run before anything else; PATH mutations invalidate the
	// classifier cache.
	pathBefore := os.Getenv("PATH")
	if res, ok, err := s.engine.TryBuiltin(line); ok {
		if os.Getenv("PATH") != pathBefore {
			s.engine.Classifier().ReloadPathCache()
		}
		s.lastExit = res.ExitCode
		if res.Action == domain.ActionExit {
			return false, res.ExitCode
		}
		if err == nil {
			s.record(line, res)
		}
		return true, 0
	}

	switch s.engine.Classifier().Classify(line) {
	case engine.InputGoodbye:
		return false, s.lastExit

	case engine.InputCommand:
		res, err := s.engine.Execute(context.Background(), line)
		if err != nil {
			// Parse error: already reported, never recorded.
			s.lastExit = 2
			return true, 0
		}
		s.lastExit = res.ExitCode
		if res.Action == domain.ActionExit {
			return false, res.ExitCode
		}
		s.record(line, res)
		if res.ExitCode != 0 {
			s.investigate(line, res, false)
		}
		return true, 0

	case engine.InputNatural:
		return s.routeToAI(line), 0
	}
	return true, 0
}

// routeToAI sends a natural-language line through the agent loop. The
// interrupt handler lives only inside this call, so it can never interfere
// with PTY children.
func (s *Shell) routeToAI(line string) bool {
	if s.assist == nil {
		s.jarvis.Warn("I'm offline, sir. Set OPENAI_API_KEY to wake me up.")
		return true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if s.conv == nil {
		s.conv = s.assist.NewConversation(s.historyContext())
	}

	result, err := s.assist.Converse(ctx, s.conv, line)
	if err != nil {
		s.log.Warn("AI turn failed", zap.Error(err))
		s.jarvis.Warn("I couldn't reach the model: " + err.Error())
		s.conv = nil
		return true
	}
	if result.Interrupted {
		// Abort means: discard the conversation, record nothing for the
		// turn itself, return to the prompt.
		s.conv = nil
		s.jarvis.PrintEnd()
		return true
	}
	if result.RoundsExhausted {
		s.jarvis.Warn("I reached my round limit for this request, sir.")
	}
	if result.RanCommand {
		s.lastExit = result.LastExitCode
	}
	if engine.IsAIGoodbye(result.Text) {
		s.farewellShown = true
		return false
	}
	return true
}

// investigate offers (or, for AI-initiated commands, auto-starts) an error
// investigation after a non-zero exit.
func (s *Shell) investigate(line string, res domain.CommandResult, fromToolCall bool) {
	if s.assist == nil {
		return
	}
	if !fromToolCall && !s.jarvis.AskInvestigate(res.ExitCode) {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conv := s.assist.NewInvestigation(s.historyContext())
	result, err := s.assist.Converse(ctx, conv, ai.InvestigationInput(line, res))
	if err != nil {
		s.log.Warn("error investigation failed", zap.Error(err))
		return
	}
	if result.Interrupted {
		s.jarvis.PrintEnd()
		return
	}
	// Keep the thread so the user can ask follow-up questions.
	s.conv = conv
	if result.RanCommand {
		s.lastExit = result.LastExitCode
	}
}

// record persists the invocation; storage failures are logged and the
// shell carries on.
func (s *Shell) record(line string, res domain.CommandResult) {
	if s.index == nil {
		return
	}
	if err := s.index.Record(line, res); err != nil {
		s.log.Warn("failed to record history", zap.Error(err))
	}
}

func (s *Shell) historyContext() string {
	if s.index == nil {
		return ""
	}
	return s.index.RecentContext(5)
}

