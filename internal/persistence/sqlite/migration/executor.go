package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor applies migrations against an open database connection.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an executor bound to the provided database.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// InitializeVersionTable creates the schema_migrations bookkeeping table.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}
	return nil
}

// AppliedVersions returns the set of migration versions already applied.
func (e *Executor) AppliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan applied version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applied versions: %w", err)
	}
	return applied, nil
}

// ExecuteMigration applies a single migration inside a transaction and records it.
func (e *Executor) ExecuteMigration(ctx context.Context, m Migration) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %s: %w", m.FileName, err)
	}

	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Description, appliedAt,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.FileName, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.FileName, err)
	}
	return nil
}

// RunMigrations applies all embedded migrations that have not been applied yet.
func (e *Executor) RunMigrations(ctx context.Context) error {
	if err := e.InitializeVersionTable(ctx); err != nil {
		return err
	}

	migrations, err := ScanMigrations()
	if err != nil {
		return err
	}

	applied, err := e.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := e.ExecuteMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
