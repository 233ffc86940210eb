// File path: internal/store/store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps a pooled sqlx.DB connection to the SQLite database holding
// reports, outcomes, profiles, and outreach emails.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at path. The
// schema is migrated on first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", abs, 5000)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an existing database handle. Used by tests that inject
// a sqlmock-backed connection; no migration runs.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying sqlx.DB for advanced callers.
func (s *Store) DB() *sqlx.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialised")
	}
	// SQLite refuses journal-mode changes inside a transaction, so the
	// pragmas run on the connection first and only DDL is transactional.
	for _, pragma := range connectionPragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var connectionPragmas = []string{
	`PRAGMA journal_mode = WAL;`,
	`PRAGMA foreign_keys = ON;`,
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pov_reports (
                id TEXT PRIMARY KEY,
                user_id TEXT NOT NULL,
                vendor_name TEXT NOT NULL,
                vendor_url TEXT NOT NULL DEFAULT '',
                vendor_services TEXT NOT NULL DEFAULT '',
                target_customer_name TEXT NOT NULL,
                target_customer_url TEXT NOT NULL DEFAULT '',
                role_names TEXT NOT NULL DEFAULT '',
                role_context TEXT NOT NULL DEFAULT '',
                additional_context TEXT NOT NULL DEFAULT '',
                linkedin_urls TEXT NOT NULL DEFAULT '',
                model_name TEXT NOT NULL DEFAULT '',
                status TEXT NOT NULL DEFAULT 'processing',
                context_data BLOB,
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_pov_reports_user ON pov_reports(user_id);`,
	`CREATE TABLE IF NOT EXISTS pov_outcome_titles (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                report_id TEXT NOT NULL REFERENCES pov_reports(id) ON DELETE CASCADE,
                title_index INTEGER NOT NULL,
                title TEXT NOT NULL,
                selected INTEGER NOT NULL DEFAULT 0,
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
                UNIQUE(report_id, title_index)
        );`,
	`CREATE TABLE IF NOT EXISTS pov_outcomes (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                report_id TEXT NOT NULL REFERENCES pov_reports(id) ON DELETE CASCADE,
                outcome_index INTEGER NOT NULL,
                title TEXT NOT NULL,
                content TEXT NOT NULL,
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
                UNIQUE(report_id, outcome_index)
        );`,
	`CREATE TABLE IF NOT EXISTS pov_summary (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                report_id TEXT NOT NULL UNIQUE REFERENCES pov_reports(id) ON DELETE CASCADE,
                summary_content TEXT NOT NULL DEFAULT '',
                takeaways_content TEXT NOT NULL DEFAULT '',
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS profiles (
                id TEXT PRIMARY KEY,
                email TEXT NOT NULL UNIQUE,
                full_name TEXT NOT NULL DEFAULT '',
                role TEXT NOT NULL DEFAULT 'user',
                organization TEXT NOT NULL DEFAULT '',
                report_quota INTEGER NOT NULL DEFAULT 25,
                reports_used INTEGER NOT NULL DEFAULT 0,
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS outreach_emails (
                id TEXT PRIMARY KEY,
                report_id TEXT NOT NULL REFERENCES pov_reports(id) ON DELETE CASCADE,
                user_id TEXT NOT NULL,
                scenario TEXT NOT NULL,
                subject TEXT NOT NULL DEFAULT '',
                content TEXT NOT NULL,
                proposal TEXT NOT NULL DEFAULT '',
                status TEXT NOT NULL DEFAULT 'draft',
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_outreach_report ON outreach_emails(report_id);`,
}
