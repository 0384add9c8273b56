package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
)

// SaveCustomer inserts or replaces a customer record.
func (s *SQLiteStorage) SaveCustomer(ctx context.Context, customer *model.Customer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("%w: customer", ErrNilParameter)
	}
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	query := `
		INSERT INTO customers (id, name, kyc_level, created_at)
		VALUES (?, ?, ?, COALESCE((SELECT created_at FROM customers WHERE id = ?), CURRENT_TIMESTAMP))
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, kyc_level = excluded.kyc_level`

	if _, err := s.db.ExecContext(ctx, query, customer.ID, customer.Name, customer.KYCLevel, customer.ID); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// GetCustomer returns a customer by ID.
func (s *SQLiteStorage) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT id, name, kyc_level, created_at FROM customers WHERE id = ?`

	var customer model.Customer
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID, &customer.Name, &customer.KYCLevel, &customer.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &customer, nil
}

// ListCustomers returns all customers ordered by name.
func (s *SQLiteStorage) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, name, kyc_level, created_at FROM customers ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var customer model.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.KYCLevel, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}
