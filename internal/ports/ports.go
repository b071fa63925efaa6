// Package ports defines the interfaces between the application core and the
// infrastructure adapters, keeping the core independent of concrete
// storage, transport, and CLI implementations.
package ports

import (
	"context"

	"github.com/doeshing/jarvish/internal/domain"
)

// ConfigProvider loads the configuration snapshot from persistent storage.
type ConfigProvider interface {
	Load() (domain.Config, error)
	Path() string
}

// HistoryRepository records completed invocations and serves them back as
// context for the assistant. Implementations must never let a recording
// failure escape to the caller as anything but an error value; the shell
// continues when the black box is unavailable.
type HistoryRepository interface {
	Record(command string, result domain.CommandResult) error
	Recent(n int) ([]domain.CommandRecord, error)
	ByID(id int64) (domain.CommandRecord, error)
	LoadOutput(hash string) (string, error)
}

// BlobRepository is content-addressable byte storage.
// Put returns the empty identity for empty content.
type BlobRepository interface {
	Put(content []byte) (string, error)
	Get(hash string) ([]byte, error)
}

// CommandRunner executes one input line through the execution engine.
// The assistant's execute_shell_command tool is backed by this.
type CommandRunner interface {
	Run(ctx context.Context, line string) domain.CommandResult
}
