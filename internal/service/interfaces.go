// Package service defines the contracts between the policy engine and its
// collaborators: persistent policy state, the atomic ledger, and the audit
// trail.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/model"
)

// MoveResult is the ledger's report of a completed atomic movement.
type MoveResult struct {
	TransactionID string
	NewBalance    decimal.Decimal
}

// Ledger is the external atomic money mover. AtomicMove must lock the account
// row, verify sufficient funds for debits, apply the movement and record the
// transaction entry as one unit; any failure must leave balances unchanged.
// Amount is signed: negative debits the account, positive credits it.
type Ledger interface {
	AtomicMove(ctx context.Context, accountID string, amount decimal.Decimal, description string, metadata map[string]string) (*MoveResult, error)
}

// AuditTrail is the append-only record of every policy override and
// configuration change. Record must be durable before the triggering admin
// operation reports success.
type AuditTrail interface {
	Record(ctx context.Context, event *model.OverrideEvent) error
	ListOverrideEvents(ctx context.Context, limit int) ([]model.OverrideEvent, error)
}

// PeriodTotals carries a customer's accumulated debit totals for the current
// day and calendar month.
type PeriodTotals struct {
	Daily   decimal.Decimal
	Monthly decimal.Decimal
}

// Storage defines the persistence contract for policy state, customer rules
// and the ledger read path. Methods that take an OverrideEvent must apply the
// state change and append the event in the same transaction, so an override
// without its audit record can never be observed.
type Storage interface {
	// Customer operations
	SaveCustomer(ctx context.Context, customer *model.Customer) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)

	// Payee operations
	SavePayee(ctx context.Context, payee *model.Payee) error
	GetPayee(ctx context.Context, id string) (*model.Payee, error)
	GetPayeesByCustomer(ctx context.Context, customerID string) ([]model.Payee, error)
	MarkPayeeUsed(ctx context.Context, id string, usedAt time.Time) error
	WaivePayee(ctx context.Context, id string, usedAt time.Time, event *model.OverrideEvent) error

	// Cooling-period configuration
	GetCoolingConfig(ctx context.Context, rail string) (*model.CoolingConfig, error)
	ListCoolingConfigs(ctx context.Context) ([]model.CoolingConfig, error)
	SaveCoolingConfig(ctx context.Context, cfg *model.CoolingConfig, event *model.OverrideEvent) error

	// Transaction limit tiers
	GetLimitTier(ctx context.Context, level model.KYCLevel) (*model.LimitTier, error)
	ListLimitTiers(ctx context.Context) ([]model.LimitTier, error)
	SaveLimitTier(ctx context.Context, tier *model.LimitTier, event *model.OverrideEvent) error

	// Strong customer authentication settings
	GetScaSetting(ctx context.Context, key string) (*model.ScaSetting, error)
	SaveScaSetting(ctx context.Context, setting *model.ScaSetting, event *model.OverrideEvent) error

	// Spending alert rules
	SaveAlertRule(ctx context.Context, rule *model.AlertRule) error
	GetAlertRule(ctx context.Context, id string) (*model.AlertRule, error)
	GetAlertRulesByCustomer(ctx context.Context, customerID string) ([]model.AlertRule, error)
	SetAlertRuleActive(ctx context.Context, id string, active bool) error
	RecordAlertTriggers(ctx context.Context, ruleIDs []string, at time.Time) error

	// Accounts and activity (the ledger's read path)
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error)
	GetRecentTransactions(ctx context.Context, customerID string, since time.Time) ([]model.Transaction, error)
	GetDebitTotals(ctx context.Context, customerID string, now time.Time) (*PeriodTotals, error)

	// Admin credit: movement and audit event in one transaction.
	ManualCredit(ctx context.Context, accountID string, amount decimal.Decimal, description string, event *model.OverrideEvent) (*MoveResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
