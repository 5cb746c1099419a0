// internal/storage/archive/archiver.go
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/minjia/goldgap/internal/core"
	"github.com/minjia/goldgap/internal/export"
)

// Archiver writes completed runs to a Storage backend as JSON and CSV
// artifacts under date-partitioned keys:
//
//	runs/2024/03/04/run-<id>.json
//	runs/2024/03/04/run-<id>.csv
type Archiver struct {
	storage Storage
	logger  *zap.Logger
}

// NewArchiver creates an archiver on top of a storage backend.
func NewArchiver(storage Storage, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{storage: storage, logger: logger}
}

// RunKey returns the archive key for a run artifact with the given
// extension ("json" or "csv").
func RunKey(run *core.Run, ext string) string {
	return fmt.Sprintf("runs/%s/run-%s.%s", run.At.UTC().Format("2006/01/02"), run.ID, ext)
}

// Archive stores the run as both JSON and CSV.
func (a *Archiver) Archive(ctx context.Context, run *core.Run) error {
	data, err := json.MarshalIndent(export.ToRunJSON(run), "", "  ")
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	jsonKey := RunKey(run, "json")
	if err := a.storage.Write(ctx, jsonKey, data); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}

	var buf bytes.Buffer
	if err := export.CSV(&buf, run.Table); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	csvKey := RunKey(run, "csv")
	if err := a.storage.Write(ctx, csvKey, buf.Bytes()); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}

	a.logger.Debug("run archived",
		zap.String("run_id", run.ID),
		zap.String("json_key", jsonKey),
		zap.String("csv_key", csvKey))
	return nil
}

// Load reads an archived run back from its JSON artifact key.
func (a *Archiver) Load(ctx context.Context, key string) (*export.RunJSON, error) {
	data, err := a.storage.Read(ctx, key)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	var run export.RunJSON
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &run, nil
}
