package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/testutil"
)

func TestService_EvaluateCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "85.32"))
	rule := db.SeedAlertRule(t, customer.ID, "Low balance", model.AlertBalanceBelow,
		testutil.Amount(t, "100"), nil)

	svc := NewService(db.Storage)

	triggered, err := svc.EvaluateCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{rule.ID}, triggered)

	// Pure evaluation leaves the trigger counter untouched.
	stored, err := db.Storage.GetAlertRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TriggerCount)
	assert.Nil(t, stored.LastTriggeredAt)
}

func TestService_EvaluateCustomer_NoRules(t *testing.T) {
	db := testutil.SetupTestDB(t)

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	svc := NewService(db.Storage)

	triggered, err := svc.EvaluateCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestService_EvaluateAndRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "85.32"))
	rule := db.SeedAlertRule(t, customer.ID, "Low balance", model.AlertBalanceBelow,
		testutil.Amount(t, "100"), nil)
	quiet := db.SeedAlertRule(t, customer.ID, "Big spend", model.AlertSingleTransaction,
		testutil.Amount(t, "500"), nil)

	svc := NewService(db.Storage)
	now := time.Now().UTC()
	svc.SetNowFunc(func() time.Time { return now })

	triggered, err := svc.EvaluateAndRecord(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{rule.ID}, triggered)

	stored, err := db.Storage.GetAlertRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TriggerCount)
	require.NotNil(t, stored.LastTriggeredAt)

	untouched, err := db.Storage.GetAlertRule(ctx, quiet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.TriggerCount)

	// Counters accumulate on repeat triggers; nothing suppresses them.
	_, err = svc.EvaluateAndRecord(ctx, customer.ID)
	require.NoError(t, err)
	stored, err = db.Storage.GetAlertRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TriggerCount)
}

func TestService_EvaluateCustomer_DisabledRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "85.32"))
	rule := db.SeedAlertRule(t, customer.ID, "Low balance", model.AlertBalanceBelow,
		testutil.Amount(t, "100"), nil)

	require.NoError(t, db.Storage.SetAlertRuleActive(ctx, rule.ID, false))

	svc := NewService(db.Storage)
	triggered, err := svc.EvaluateCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, triggered)
}
