package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: rules, documents, cards",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS classification_rules (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					prompt TEXT NOT NULL,
					enabled INTEGER NOT NULL DEFAULT 1,
					priority INTEGER NOT NULL DEFAULT 100,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_rules_user_enabled ON classification_rules(user_id, enabled, priority)`,

				`CREATE TABLE IF NOT EXISTS documents (
					id TEXT NOT NULL,
					version INTEGER NOT NULL,
					document_type TEXT NOT NULL,
					card_title TEXT,
					extracted_title TEXT,
					extracted_summary TEXT,
					amount TEXT,
					currency TEXT,
					seller_name TEXT,
					buyer_name TEXT,
					issue_date DATETIME,
					due_date DATETIME,
					invoice_number TEXT,
					ai_rationale TEXT,
					confidence INTEGER NOT NULL DEFAULT 0,
					requires_action INTEGER NOT NULL DEFAULT 0,
					suggested_action_label TEXT,
					items TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (id, version)
				)`,

				`CREATE TABLE IF NOT EXISTS cards (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					document_id TEXT NOT NULL UNIQUE,
					status TEXT NOT NULL DEFAULT 'pending',
					requires_action INTEGER NOT NULL DEFAULT 0,
					categories TEXT NOT NULL DEFAULT '[]',
					suggested_action_label TEXT,
					payment_status TEXT NOT NULL DEFAULT 'unpaid',
					paid_at DATETIME,
					expense_category TEXT,
					added_to_expenses INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_cards_user_status ON cards(user_id, status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Classification audit log",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS classification_log (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					card_id TEXT NOT NULL,
					rule_id TEXT NOT NULL,
					rule_name TEXT NOT NULL,
					confidence INTEGER NOT NULL DEFAULT 0,
					actions TEXT NOT NULL DEFAULT '[]',
					classified_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (card_id) REFERENCES cards(id)
				)`,
				`CREATE INDEX idx_classification_log_card ON classification_log(card_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index for card lookup by document",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_cards_document ON cards(document_id)`)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
