package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/testutil"
)

func TestAlertRuleRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	rule := db.SeedAlertRule(t, customer.ID, "Grocery budget", model.AlertCategoryMonthly,
		testutil.Amount(t, "400"), func(r *model.AlertRule) {
			r.Category = "groceries"
		})

	stored, err := db.Storage.GetAlertRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grocery budget", stored.Name)
	assert.Equal(t, model.AlertCategoryMonthly, stored.Kind)
	assert.Equal(t, "groceries", stored.Category)
	assert.True(t, stored.Threshold.Equal(testutil.Amount(t, "400")))
	assert.True(t, stored.Active)
	assert.Equal(t, 0, stored.TriggerCount)

	_, err = db.Storage.GetAlertRule(ctx, "no-such-rule")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveAlertRule_RejectsInvalid(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rule := &model.AlertRule{
		ID:         "rule-1",
		CustomerID: "cust-1",
		Name:       "Budget",
		Kind:       model.AlertCategoryMonthly, // missing category
		Threshold:  testutil.Amount(t, "400"),
		CreatedAt:  time.Now(),
	}
	err := db.Storage.SaveAlertRule(context.Background(), rule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid alert rule")
}

func TestSetAlertRuleActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	rule := db.SeedAlertRule(t, customer.ID, "Big spend", model.AlertSingleTransaction,
		testutil.Amount(t, "250"), nil)

	require.NoError(t, db.Storage.SetAlertRuleActive(ctx, rule.ID, false))

	stored, err := db.Storage.GetAlertRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	err = db.Storage.SetAlertRuleActive(ctx, "no-such-rule", true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordAlertTriggers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	first := db.SeedAlertRule(t, customer.ID, "Big spend", model.AlertSingleTransaction,
		testutil.Amount(t, "250"), nil)
	second := db.SeedAlertRule(t, customer.ID, "Low balance", model.AlertBalanceBelow,
		testutil.Amount(t, "100"), nil)
	bystander := db.SeedAlertRule(t, customer.ID, "Salary watch", model.AlertLargeIncoming,
		testutil.Amount(t, "1000"), nil)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Storage.RecordAlertTriggers(ctx, []string{first.ID, second.ID}, at))

	for _, id := range []string{first.ID, second.ID} {
		stored, err := db.Storage.GetAlertRule(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.TriggerCount)
		require.NotNil(t, stored.LastTriggeredAt)
		assert.True(t, stored.LastTriggeredAt.Equal(at))
	}

	untouched, err := db.Storage.GetAlertRule(ctx, bystander.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.TriggerCount)
	assert.Nil(t, untouched.LastTriggeredAt)
}

func TestCustomerRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCEnhanced)

	stored, err := db.Storage.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Priya Shah", stored.Name)
	assert.Equal(t, model.KYCEnhanced, stored.KYCLevel)

	// Upserting the same ID updates the KYC level in place.
	customer.KYCLevel = model.KYCFull
	require.NoError(t, db.Storage.SaveCustomer(ctx, customer))
	stored, err = db.Storage.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KYCFull, stored.KYCLevel)

	_, err = db.Storage.GetCustomer(ctx, "no-such-customer")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
