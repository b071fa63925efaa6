// Package app wires the dependency graph: config, logging, the black box,
// the engine, the assistant, and the REPL.
package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/doeshing/jarvish/internal/domain"
	"github.com/doeshing/jarvish/internal/infrastructure/ai"
	"github.com/doeshing/jarvish/internal/infrastructure/blackbox"
	"github.com/doeshing/jarvish/internal/infrastructure/cli"
	"github.com/doeshing/jarvish/internal/infrastructure/config"
	"github.com/doeshing/jarvish/internal/infrastructure/engine"
	"github.com/doeshing/jarvish/internal/pkg/filesystem"
	"github.com/doeshing/jarvish/internal/pkg/logger"
	"github.com/doeshing/jarvish/internal/ports"
)

// Container holds the wired application.
type Container struct {
	Shell *cli.Shell
	Log   *zap.Logger

	index *blackbox.Index
}

// Close releases held resources.
func (c *Container) Close() {
	if c.index != nil {
		c.index.Close()
	}
	if c.Log != nil {
		c.Log.Sync()
	}
}

// BuildContainer constructs the dependency graph. Invalid configuration is
// fatal; a broken black box is not — the shell runs without recording.
func BuildContainer(verbose bool, configPath string) (*Container, error) {
	loader := config.NewFileLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	dataDir := filesystem.DataDir()
	log, err := logger.New(dataDir, verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	applyExports(cfg, log)

	index, err := blackbox.Open(dataDir, log)
	if err != nil {
		log.Warn("black box unavailable, history disabled", zap.Error(err))
		fmt.Fprintf(os.Stderr, "jarvish: warning: black box unavailable: %v\n", err)
		index = nil
	}

	var historyRepo ports.HistoryRepository
	if index != nil {
		historyRepo = index
	}

	builtins := engine.NewBuiltins(loader, historyRepo, log)
	builtins.SetAliases(cfg.Alias)
	// Build the PATH cache after exports so configured PATH entries count.
	classifier := engine.NewClassifier(builtins.IsBuiltin, log)
	eng := engine.New(builtins, classifier, log)

	jarvis := cli.NewJarvis()

	var assist *ai.Client
	runner := &recordingRunner{engine: eng, history: historyRepo, log: log}
	assist, err = ai.NewClient(cfg.AI, runner, jarvis, log)
	if err != nil {
		log.Info("AI disabled", zap.Error(err))
		assist = nil
	}

	shell, err := cli.NewShell(eng, index, assist, jarvis, cfg, dataDir, log)
	if err != nil {
		return nil, fmt.Errorf("init line editor: %w", err)
	}

	return &Container{Shell: shell, Log: log, index: index}, nil
}

// applyExports sets the config's [export] entries into the environment,
// expanding $VAR references at load.
func applyExports(cfg domain.Config, log *zap.Logger) {
	for key, value := range cfg.Export {
		expanded := engine.ExpandValue(value)
		log.Info("applying export from config", zap.String("key", key))
		os.Setenv(key, expanded)
	}
}

// recordingRunner feeds the assistant's execute_shell_command tool through
// the same engine and records the invocation tagged with its AI origin.
type recordingRunner struct {
	engine  *engine.Engine
	history ports.HistoryRepository
	log     *zap.Logger
}

func (r *recordingRunner) Run(ctx context.Context, line string) domain.CommandResult {
	res, err := r.engine.Execute(ctx, line)
	if err != nil {
		// Parse errors become tool-result text, never shell errors.
		return domain.Failure(fmt.Sprintf("jarvish: %v\n", err), 2)
	}
	if r.history != nil && res.Action == domain.ActionContinue {
		if err := r.history.Record("[jarvis] "+line, res); err != nil {
			r.log.Warn("failed to record AI command", zap.Error(err))
		}
	}
	return res
}
