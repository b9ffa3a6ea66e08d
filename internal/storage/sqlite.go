package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

const (
	selectStateSQL = `SELECT payload FROM app_state WHERE name = ?`
	upsertStateSQL = `INSERT INTO app_state (name, payload, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
)

// SQLite stores the document as a single row of the app_state table.
type SQLite struct {
	db     *sql.DB
	name   string
	logger *log.Logger
}

// NewSQLite opens (creating if needed) the database at dbPath and runs the
// embedded migrations. An empty name selects DefaultStateName.
func NewSQLite(dbPath, name string, logger *log.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if name == "" {
		name = DefaultStateName
	}
	return &SQLite{
		db:     db,
		name:   name,
		logger: log.OrDefault(logger).WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLite) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLite) Load(ctx context.Context) ([]core.Transaction, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, selectStateSQL, r.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", r.name, err)
	}
	return decodeLogged(ctx, []byte(payload), r.logger)
}

func (r *SQLite) Save(ctx context.Context, txs []core.Transaction) error {
	b, err := Encode(txs)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertStateSQL, r.name, string(b)); err != nil {
		return fmt.Errorf("write state %s: %w", r.name, err)
	}

	r.logger.DebugContext(ctx, "State saved to SQLite",
		log.FieldOperation, log.OpSave,
		log.FieldStateName, r.name,
		log.FieldCount, len(txs))
	return nil
}
