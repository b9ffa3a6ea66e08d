// Package backend selects and builds the persistence backend behind the
// transaction store.
package backend

import (
	"context"

	"budgetplanner/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is a ready persister plus its optional cleanup.
type BackendResult struct {
	Persister store.Persister
	Cleanup   CleanupFunc
}

// Close runs the cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates persisters based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds what a backend needs to open its storage.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// File specific
	FilePath string

	// Key of the persisted document
	StateName string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
