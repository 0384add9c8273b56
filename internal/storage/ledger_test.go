package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/testutil"
)

func TestAtomicMove_Debit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "500"))

	result, err := db.Storage.AtomicMove(ctx, account.ID, testutil.Amount(t, "-120.50"), "Rent", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.TransactionID)
	assert.True(t, result.NewBalance.Equal(testutil.Amount(t, "379.50")))

	txns, err := db.Storage.GetRecentTransactions(ctx, customer.ID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.DirectionDebit, txns[0].Direction)
	assert.True(t, txns[0].Amount.Equal(testutil.Amount(t, "120.50")), "amount %s", txns[0].Amount)
}

func TestAtomicMove_Credit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "500"))

	result, err := db.Storage.AtomicMove(ctx, account.ID, testutil.Amount(t, "250"), "Salary", nil)
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(testutil.Amount(t, "750")))

	txns, err := db.Storage.GetRecentTransactions(ctx, customer.ID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.DirectionCredit, txns[0].Direction)
}

func TestAtomicMove_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "100"))

	_, err := db.Storage.AtomicMove(ctx, account.ID, testutil.Amount(t, "-200"), "Rent", nil)
	var ledgerErr *common.LedgerError
	require.ErrorAs(t, err, &ledgerErr)
	assert.Contains(t, ledgerErr.Reason, "insufficient funds")

	// A refused movement leaves no trace: balance and history unchanged.
	stored, err := db.Storage.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.AvailableBalance.Equal(testutil.Amount(t, "100")))

	txns, err := db.Storage.GetRecentTransactions(ctx, customer.ID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestAtomicMove_UnknownAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := db.Storage.AtomicMove(context.Background(), "no-such-account", testutil.Amount(t, "-10"), "Rent", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManualCredit_WritesAuditAtomically(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "100"))

	event := &model.OverrideEvent{
		ID:            uuid.NewString(),
		ActorID:       "ops-1",
		ActorRole:     model.RoleAdmin,
		Action:        model.ActionManualCredit,
		TargetType:    "account",
		TargetID:      account.ID,
		Justification: "goodwill refund for outage",
		CreatedAt:     time.Now().UTC(),
	}

	result, err := db.Storage.ManualCredit(ctx, account.ID, testutil.Amount(t, "50"), "Manual credit", event)
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(testutil.Amount(t, "150")))

	events, err := db.Storage.ListOverrideEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ActionManualCredit, events[0].Action)
}

func TestGetDebitTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "10000"))

	// Two debits and a credit today; the credit never counts.
	_, err := db.Storage.AtomicMove(ctx, account.ID, testutil.Amount(t, "-100"), "Rent", nil)
	require.NoError(t, err)
	_, err = db.Storage.AtomicMove(ctx, account.ID, testutil.Amount(t, "-50.25"), "Groceries", nil)
	require.NoError(t, err)
	_, err = db.Storage.AtomicMove(ctx, account.ID, testutil.Amount(t, "400"), "Salary", nil)
	require.NoError(t, err)

	totals, err := db.Storage.GetDebitTotals(ctx, customer.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, totals.Daily.Equal(testutil.Amount(t, "150.25")), "daily %s", totals.Daily)
	assert.True(t, totals.Monthly.Equal(testutil.Amount(t, "150.25")), "monthly %s", totals.Monthly)
}

func TestGetDebitTotals_NoActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)

	totals, err := db.Storage.GetDebitTotals(context.Background(), customer.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, totals.Daily.IsZero())
	assert.True(t, totals.Monthly.IsZero())
}
