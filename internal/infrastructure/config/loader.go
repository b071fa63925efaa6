// Package config loads the TOML configuration from the user config
// directory, writing a commented default template on first run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/doeshing/jarvish/internal/domain"
	"github.com/doeshing/jarvish/internal/pkg/filesystem"
)

const defaultTemplate = `# Jarvish configuration

[ai]
# model = "gpt-4o"
# max_rounds = 10

[alias]
# g = "git"
# ll = "ls -la"

[export]
# PATH = "/usr/local/bin:$PATH"

[prompt]
# nerd_font = true
`

// FileLoader reads {config_dir}/jarvish/config.toml, overridable for tests.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a loader. An empty path means the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	return filesystem.ConfigPath()
}

// Load implements ports.ConfigProvider. A missing file yields defaults and
// writes the commented template; invalid TOML is an error (startup aborts).
func (l *FileLoader) Load() (domain.Config, error) {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if werr := writeDefault(path); werr != nil {
				// Shell still starts with defaults when the template
				// cannot be written.
				return domain.DefaultConfig(), nil
			}
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := domain.DefaultConfig()
	// Unknown keys are ignored; DecodeFile's metadata is not consulted.
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = domain.DefaultConfig().AI.Model
	}
	if cfg.AI.MaxRounds <= 0 {
		cfg.AI.MaxRounds = domain.DefaultConfig().AI.MaxRounds
	}
	if cfg.Alias == nil {
		cfg.Alias = map[string]string{}
	}
	if cfg.Export == nil {
		cfg.Export = map[string]string{}
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o644)
}
