package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection distinguishes money leaving an account from money
// arriving in it.
type TransactionDirection string

// Transaction directions.
const (
	DirectionDebit  TransactionDirection = "debit"
	DirectionCredit TransactionDirection = "credit"
)

// Transaction is one posted ledger entry, as seen by the policy engine's
// read path. Amount is always positive; Direction carries the sign.
type Transaction struct {
	Date         time.Time
	ID           string
	AccountID    string
	CustomerID   string
	Description  string
	Counterparty string
	Category     string
	Direction    TransactionDirection
	Amount       decimal.Decimal
}

// Account is a customer account snapshot with its available balance.
type Account struct {
	UpdatedAt        time.Time
	ID               string
	CustomerID       string
	Name             string
	AvailableBalance decimal.Decimal
}
