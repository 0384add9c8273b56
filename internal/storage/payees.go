package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
)

// SavePayee inserts a new payee record.
func (s *SQLiteStorage) SavePayee(ctx context.Context, payee *model.Payee) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if payee == nil {
		return fmt.Errorf("%w: payee", ErrNilParameter)
	}
	if err := payee.Validate(); err != nil {
		return fmt.Errorf("invalid payee: %w", err)
	}

	query := `
		INSERT INTO payees (id, customer_id, name, rail, favourite, first_used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		payee.ID, payee.CustomerID, payee.Name, payee.Rail,
		payee.Favourite, payee.FirstUsedAt, payee.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save payee: %w", err)
	}
	return nil
}

// GetPayee returns a payee by ID.
func (s *SQLiteStorage) GetPayee(ctx context.Context, id string) (*model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, customer_id, name, rail, favourite, first_used_at, created_at
		FROM payees
		WHERE id = ?`

	var payee model.Payee
	var firstUsed sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&payee.ID, &payee.CustomerID, &payee.Name, &payee.Rail,
		&payee.Favourite, &firstUsed, &payee.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payee %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payee: %w", err)
	}

	payee.FirstUsedAt = nullableTime(firstUsed)
	return &payee, nil
}

// GetPayeesByCustomer returns all of a customer's payees, favourites first.
func (s *SQLiteStorage) GetPayeesByCustomer(ctx context.Context, customerID string) ([]model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(customerID, "customerID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, customer_id, name, rail, favourite, first_used_at, created_at
		FROM payees
		WHERE customer_id = ?
		ORDER BY favourite DESC, name`

	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payees: %w", err)
	}
	defer rows.Close()

	var payees []model.Payee
	for rows.Next() {
		var payee model.Payee
		var firstUsed sql.NullTime
		if err := rows.Scan(&payee.ID, &payee.CustomerID, &payee.Name, &payee.Rail,
			&payee.Favourite, &firstUsed, &payee.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		payee.FirstUsedAt = nullableTime(firstUsed)
		payees = append(payees, payee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payees: %w", err)
	}

	return payees, nil
}

// MarkPayeeUsed sets a payee's first-use timestamp if it is not already set.
// First use is permanent; a payee that already has one keeps it.
func (s *SQLiteStorage) MarkPayeeUsed(ctx context.Context, id string, usedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	query := `UPDATE payees SET first_used_at = ? WHERE id = ? AND first_used_at IS NULL`

	if _, err := s.db.ExecContext(ctx, query, usedAt, id); err != nil {
		return fmt.Errorf("failed to mark payee used: %w", err)
	}
	return nil
}

// WaivePayee sets the payee's first-use timestamp and appends the waiver's
// audit event in one transaction, so a waiver without its audit record can
// never be observed.
func (s *SQLiteStorage) WaivePayee(ctx context.Context, id string, usedAt time.Time, event *model.OverrideEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid override event: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE payees SET first_used_at = ? WHERE id = ? AND first_used_at IS NULL`,
			usedAt, id)
		if err != nil {
			return fmt.Errorf("failed to waive payee: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check waiver result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("payee %s is missing or already cleared: %w", id, common.ErrNotFound)
		}

		return insertOverrideEventTx(ctx, tx, event)
	})
}
