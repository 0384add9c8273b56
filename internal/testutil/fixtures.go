package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/model"
)

// SeedCustomer inserts a customer and returns it.
func (db *TestDB) SeedCustomer(t *testing.T, name string, level model.KYCLevel) *model.Customer {
	t.Helper()

	customer := &model.Customer{
		ID:       uuid.NewString(),
		Name:     name,
		KYCLevel: level,
	}
	if err := db.Storage.SaveCustomer(context.Background(), customer); err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	return customer
}

// SeedAccount inserts an account with the given balance and returns it.
func (db *TestDB) SeedAccount(t *testing.T, customerID, name string, balance decimal.Decimal) *model.Account {
	t.Helper()

	account := &model.Account{
		ID:               uuid.NewString(),
		CustomerID:       customerID,
		Name:             name,
		AvailableBalance: balance,
	}
	if err := db.Storage.SaveAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return account
}

// SeedPayee inserts a payee created at the given time and returns it.
func (db *TestDB) SeedPayee(t *testing.T, customerID, name, rail string, createdAt time.Time) *model.Payee {
	t.Helper()

	payee := &model.Payee{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Name:       name,
		Rail:       rail,
		CreatedAt:  createdAt,
	}
	if err := db.Storage.SavePayee(context.Background(), payee); err != nil {
		t.Fatalf("failed to seed payee: %v", err)
	}
	return payee
}

// SeedAlertRule inserts an alert rule and returns it. Use the optional
// mutate function to set kind-specific scoping before the save.
func (db *TestDB) SeedAlertRule(t *testing.T, customerID, name string, kind model.AlertRuleKind, threshold decimal.Decimal, mutate func(*model.AlertRule)) *model.AlertRule {
	t.Helper()

	rule := &model.AlertRule{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Name:       name,
		Kind:       kind,
		Threshold:  threshold,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if mutate != nil {
		mutate(rule)
	}
	if err := db.Storage.SaveAlertRule(context.Background(), rule); err != nil {
		t.Fatalf("failed to seed alert rule: %v", err)
	}
	return rule
}

// Amount parses a decimal literal, failing the test on bad input.
func Amount(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad amount literal %q: %v", value, err)
	}
	return d
}
