package filesystem

import (
	"os"
	"path/filepath"
)

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// DataDir returns the jarvish data directory ($XDG_DATA_HOME/jarvish or
// ~/.local/share/jarvish). The directory is not created here.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "jarvish")
	}
	return filepath.Join(UserHomeDir(), ".local", "share", "jarvish")
}

// ConfigPath returns the path of the TOML configuration file under the
// user's config directory.
func ConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "jarvish", "config.toml")
	}
	return filepath.Join(UserHomeDir(), ".config", "jarvish", "config.toml")
}
