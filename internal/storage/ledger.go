package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/service"
)

// AtomicMove applies a signed balance change to an account and records the
// transaction entry as one unit. A negative amount debits the account and is
// refused if funds are insufficient at the time the row is read inside the
// transaction; any failure leaves the balance unchanged. The single SQLite
// connection serialises concurrent movers, standing in for the hosted
// store's row lock.
func (s *SQLiteStorage) AtomicMove(ctx context.Context, accountID string, amount decimal.Decimal, description string, metadata map[string]string) (*service.MoveResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount", ErrNilParameter)
	}

	var result *service.MoveResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		moved, err := s.atomicMoveTx(ctx, tx, accountID, amount, description, metadata, time.Now())
		if err != nil {
			return err
		}
		result = moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ManualCredit applies an admin credit and appends its audit event in the
// same transaction, so the credit and its audit record land or fail together.
func (s *SQLiteStorage) ManualCredit(ctx context.Context, accountID string, amount decimal.Decimal, description string, event *model.OverrideEvent) (*service.MoveResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount", ErrNilParameter)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid override event: %w", err)
	}

	var result *service.MoveResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		moved, err := s.atomicMoveTx(ctx, tx, accountID, amount, description, nil, time.Now())
		if err != nil {
			return err
		}
		if err := insertOverrideEventTx(ctx, tx, event); err != nil {
			return err
		}
		result = moved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStorage) atomicMoveTx(ctx context.Context, tx *sql.Tx, accountID string, amount decimal.Decimal, description string, metadata map[string]string, now time.Time) (*service.MoveResult, error) {
	var customerID, balanceStr string
	err := tx.QueryRowContext(ctx,
		`SELECT customer_id, available_balance FROM accounts WHERE id = ?`, accountID).
		Scan(&customerID, &balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", accountID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}

	balance, err := scanDecimal(balanceStr, "available_balance")
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, &common.LedgerError{
			Reason: fmt.Sprintf("insufficient funds: balance %s, requested %s", balance, amount.Abs()),
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET available_balance = ?, updated_at = ? WHERE id = ?`,
		newBalance.String(), now, accountID); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	direction := model.DirectionCredit
	if amount.IsNegative() {
		direction = model.DirectionDebit
	}

	txnID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, customer_id, date, description, counterparty, category, direction, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txnID, accountID, customerID, now, description,
		metadata["counterparty"], metadata["category"],
		direction, amount.Abs().String()); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return &service.MoveResult{TransactionID: txnID, NewBalance: newBalance}, nil
}
