// internal/storage/run/interface.go
package run

import (
	"context"

	"github.com/minjia/goldgap/internal/core"
)

// Store defines the interface for keeping recent analysis runs.
type Store interface {
	// Save persists a run.
	Save(ctx context.Context, run *core.Run) error

	// Latest returns the most recent run.
	Latest(ctx context.Context) (*core.Run, error)

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id string) (*core.Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*core.Run, error)
}
