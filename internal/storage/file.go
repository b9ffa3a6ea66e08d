package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

// File persists the document as a JSON file. Writes go to a temp file in
// the same directory and are renamed into place.
type File struct {
	path   string
	logger *log.Logger
}

func NewFile(path string, logger *log.Logger) (*File, error) {
	if path == "" {
		return nil, errors.New("file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &File{
		path:   path,
		logger: log.OrDefault(logger).WithComponent(log.ComponentStorage),
	}, nil
}

func (f *File) Path() string { return f.path }

// Load returns an empty collection when the file does not exist yet.
func (f *File) Load(ctx context.Context) ([]core.Transaction, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.DebugContext(ctx, "No persisted state yet", log.FieldPath, f.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return decodeLogged(ctx, b, f.logger)
}

func (f *File) Save(ctx context.Context, txs []core.Transaction) error {
	b, err := Encode(txs)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	f.logger.DebugContext(ctx, "State written",
		log.FieldOperation, log.OpSave,
		log.FieldPath, f.path,
		log.FieldCount, len(txs))
	return nil
}
