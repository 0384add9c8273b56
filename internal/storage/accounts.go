package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/service"
)

// SaveAccount inserts or replaces an account.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateString(account.ID, "account.ID"); err != nil {
		return err
	}
	if err := validateString(account.CustomerID, "account.CustomerID"); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, customer_id, name, available_balance, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			available_balance = excluded.available_balance,
			updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.ExecContext(ctx, query,
		account.ID, account.CustomerID, account.Name, account.AvailableBalance.String())
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccount returns an account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT id, customer_id, name, available_balance, updated_at FROM accounts WHERE id = ?`

	var account model.Account
	var balance string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.CustomerID, &account.Name, &balance, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	if account.AvailableBalance, err = scanDecimal(balance, "available_balance"); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountsByCustomer returns all of a customer's accounts.
func (s *SQLiteStorage) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(customerID, "customerID"); err != nil {
		return nil, err
	}

	query := `SELECT id, customer_id, name, available_balance, updated_at
		FROM accounts WHERE customer_id = ? ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		var balance string
		if err := rows.Scan(&account.ID, &account.CustomerID, &account.Name, &balance, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if account.AvailableBalance, err = scanDecimal(balance, "available_balance"); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// GetRecentTransactions returns a customer's transactions on or after the
// given time, newest first.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, customerID string, since time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(customerID, "customerID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, account_id, customer_id, date, description, counterparty, category, direction, amount
		FROM transactions
		WHERE customer_id = ? AND date >= ?
		ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, customerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var description, counterparty, category sql.NullString
		var amount string
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.CustomerID, &txn.Date,
			&description, &counterparty, &category, &txn.Direction, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Description = description.String
		txn.Counterparty = counterparty.String
		txn.Category = category.String
		if txn.Amount, err = scanDecimal(amount, "amount"); err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetDebitTotals sums a customer's debit activity for the current day and
// calendar month relative to now. Amounts are summed in Go rather than SQL so
// the text-stored decimals never pass through float arithmetic.
func (s *SQLiteStorage) GetDebitTotals(ctx context.Context, customerID string, now time.Time) (*service.PeriodTotals, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(customerID, "customerID"); err != nil {
		return nil, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	query := `
		SELECT date, amount
		FROM transactions
		WHERE customer_id = ? AND direction = ? AND date >= ? AND date <= ?`

	rows, err := s.db.QueryContext(ctx, query, customerID, model.DirectionDebit, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query debit totals: %w", err)
	}
	defer rows.Close()

	totals := &service.PeriodTotals{Daily: decimal.Zero, Monthly: decimal.Zero}
	for rows.Next() {
		var date time.Time
		var amountStr string
		if err := rows.Scan(&date, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan debit row: %w", err)
		}
		amount, err := scanDecimal(amountStr, "amount")
		if err != nil {
			return nil, err
		}
		totals.Monthly = totals.Monthly.Add(amount)
		if !date.Before(dayStart) {
			totals.Daily = totals.Daily.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debit rows: %w", err)
	}

	return totals, nil
}
