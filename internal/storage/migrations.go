package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
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
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS customers (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					kyc_level TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS payees (
					id TEXT PRIMARY KEY,
					customer_id TEXT NOT NULL,
					name TEXT NOT NULL,
					rail TEXT NOT NULL,
					favourite INTEGER DEFAULT 0,
					first_used_at DATETIME,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (customer_id) REFERENCES customers(id)
				)`,
				`CREATE INDEX idx_payees_customer ON payees(customer_id)`,

				`CREATE TABLE IF NOT EXISTS cooling_configs (
					rail TEXT PRIMARY KEY,
					hours INTEGER NOT NULL CHECK (hours >= 0),
					active INTEGER NOT NULL DEFAULT 1,
					description TEXT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS limit_tiers (
					kyc_level TEXT PRIMARY KEY,
					single_limit TEXT NOT NULL,
					daily_limit TEXT NOT NULL,
					monthly_limit TEXT NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS sca_settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL,
					description TEXT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					customer_id TEXT NOT NULL,
					name TEXT NOT NULL,
					available_balance TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (customer_id) REFERENCES customers(id)
				)`,
				`CREATE INDEX idx_accounts_customer ON accounts(customer_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					customer_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					description TEXT,
					counterparty TEXT,
					category TEXT,
					direction TEXT NOT NULL,
					amount TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (account_id) REFERENCES accounts(id)
				)`,
				`CREATE INDEX idx_transactions_customer_date ON transactions(customer_id, date)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
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
		Description: "Alert rules and override audit trail",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS alert_rules (
					id TEXT PRIMARY KEY,
					customer_id TEXT NOT NULL,
					name TEXT NOT NULL,
					kind TEXT NOT NULL,
					account_id TEXT,
					category TEXT,
					merchant_name TEXT,
					threshold TEXT NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					last_triggered_at DATETIME,
					trigger_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					FOREIGN KEY (customer_id) REFERENCES customers(id)
				)`,
				`CREATE INDEX idx_alert_rules_customer ON alert_rules(customer_id)`,

				`CREATE TABLE IF NOT EXISTS override_events (
					id TEXT PRIMARY KEY,
					actor_id TEXT NOT NULL,
					actor_role TEXT NOT NULL,
					action TEXT NOT NULL,
					target_type TEXT NOT NULL,
					target_id TEXT NOT NULL,
					before_value TEXT,
					after_value TEXT,
					justification TEXT,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_override_events_created ON override_events(created_at)`,
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
		Description: "Seed default policy configuration",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`INSERT OR IGNORE INTO cooling_configs (rail, hours, active, description)
					VALUES ('domestic_sameday', 24, 1, 'Same-day domestic transfer rail')`,

				`INSERT OR IGNORE INTO limit_tiers (kyc_level, single_limit, daily_limit, monthly_limit, active) VALUES
					('basic', '500', '1000', '5000', 1),
					('standard', '2500', '5000', '20000', 1),
					('enhanced', '10000', '25000', '100000', 1),
					('full', '50000', '100000', '500000', 1)`,

				`INSERT OR IGNORE INTO sca_settings (key, value, description)
					VALUES ('sca_amount_threshold', '1000', 'Amount at or above which strong customer authentication is required')`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
