package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finveil/riskgate/internal/alerts"
	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/service"
	"github.com/finveil/riskgate/internal/testutil"
)

func newGateway(db *testutil.TestDB) *Gateway {
	return New(db.Storage, db.Storage, alerts.NewService(db.Storage))
}

func request(customerID, accountID, amount string) *model.MoveRequest {
	value, _ := decimal.NewFromString(amount)
	return &model.MoveRequest{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		AccountID:   accountID,
		Description: "test payment",
		Amount:      value,
	}
}

func TestGateway_Submit_Posts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "5000"))

	gw := newGateway(db)

	decision, err := gw.Submit(ctx, request(customer.ID, account.ID, "200"))
	require.NoError(t, err)
	assert.Equal(t, StateLedgerPosted, decision.State)
	require.NotNil(t, decision.Result)
	assert.NotEmpty(t, decision.Result.TransactionID)
	assert.True(t, decision.Result.NewBalance.Equal(testutil.Amount(t, "4800")),
		"new balance %s", decision.Result.NewBalance)

	stored, err := db.Storage.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.AvailableBalance.Equal(testutil.Amount(t, "4800")))
}

func TestGateway_Submit_MalformedRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)

	gw := newGateway(db)

	_, err := gw.Submit(context.Background(), &model.MoveRequest{})
	var validationErr *common.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestGateway_Submit_CoolingRejection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "5000"))
	// The seeded domestic_sameday rail cools new payees for 24 hours.
	payee := db.SeedPayee(t, customer.ID, "Landlord", "domestic_sameday", time.Now().UTC())

	gw := newGateway(db)

	req := request(customer.ID, account.ID, "200")
	req.PayeeID = payee.ID

	decision, err := gw.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StateRejected, decision.State)
	require.NotNil(t, decision.Rejection)
	assert.Equal(t, common.RejectCoolingActive, decision.Rejection.Kind)
	assert.Equal(t, 24, decision.Rejection.HoursRemaining)
	assert.Contains(t, decision.Rejection.Message, "24-hour cooling window")

	// The rejection happened before any ledger activity.
	stored, err := db.Storage.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.AvailableBalance.Equal(testutil.Amount(t, "5000")))
}

func TestGateway_Submit_ClearedPayeePosts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "5000"))
	payee := db.SeedPayee(t, customer.ID, "Landlord", "domestic_sameday",
		time.Now().UTC().Add(-25*time.Hour))

	gw := newGateway(db)

	req := request(customer.ID, account.ID, "200")
	req.PayeeID = payee.ID

	decision, err := gw.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StateLedgerPosted, decision.State)

	// The first successful payment permanently clears the payee.
	stored, err := db.Storage.GetPayee(ctx, payee.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cleared())
}

func TestGateway_Submit_LimitRejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// Seeded basic tier: 500 single, 1000 daily, 5000 monthly.
	customer := db.SeedCustomer(t, "Priya Shah", model.KYCBasic)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "10000"))

	gw := newGateway(db)

	decision, err := gw.Submit(ctx, request(customer.ID, account.ID, "600"))
	require.NoError(t, err)
	assert.Equal(t, StateRejected, decision.State)
	require.NotNil(t, decision.Rejection)
	assert.Equal(t, common.RejectLimitSingle, decision.Rejection.Kind)

	// Spend 700 today, then a 400 payment breaches the daily ceiling even
	// though it is within the single-transaction limit.
	posted, err := gw.Submit(ctx, request(customer.ID, account.ID, "400"))
	require.NoError(t, err)
	require.Equal(t, StateLedgerPosted, posted.State)
	posted, err = gw.Submit(ctx, request(customer.ID, account.ID, "300"))
	require.NoError(t, err)
	require.Equal(t, StateLedgerPosted, posted.State)

	decision, err = gw.Submit(ctx, request(customer.ID, account.ID, "400"))
	require.NoError(t, err)
	assert.Equal(t, StateRejected, decision.State)
	require.NotNil(t, decision.Rejection)
	assert.Equal(t, common.RejectLimitDaily, decision.Rejection.Kind)

	// Landing exactly on the daily ceiling is allowed.
	decision, err = gw.Submit(ctx, request(customer.ID, account.ID, "300"))
	require.NoError(t, err)
	assert.Equal(t, StateLedgerPosted, decision.State)
}

func TestGateway_Submit_SCAStepUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// Enhanced tier (10000 single) keeps limits out of the way; the seeded
	// SCA threshold is 1000.
	customer := db.SeedCustomer(t, "Priya Shah", model.KYCEnhanced)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "20000"))

	gw := newGateway(db)

	// Just under the threshold posts without step-up.
	decision, err := gw.Submit(ctx, request(customer.ID, account.ID, "999"))
	require.NoError(t, err)
	assert.Equal(t, StateLedgerPosted, decision.State)

	// At the threshold the request parks awaiting step-up; nothing posts.
	decision, err = gw.Submit(ctx, request(customer.ID, account.ID, "1000"))
	require.NoError(t, err)
	assert.Equal(t, StateSCARequired, decision.State)
	require.NotNil(t, decision.Rejection)
	assert.Equal(t, common.RejectSCARequired, decision.Rejection.Kind)

	stored, err := db.Storage.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.AvailableBalance.Equal(testutil.Amount(t, "19001")))

	// Resubmission with step-up proof passes the check and posts.
	req := request(customer.ID, account.ID, "1000")
	req.SCAProof = "sca-token-1"
	decision, err = gw.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, StateLedgerPosted, decision.State)
}

func TestGateway_Submit_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "50"))

	gw := newGateway(db)

	decision, err := gw.Submit(ctx, request(customer.ID, account.ID, "200"))
	require.NoError(t, err)
	assert.Equal(t, StateRejected, decision.State)
	require.NotNil(t, decision.LedgerFailure)
	assert.Nil(t, decision.Rejection)

	// A failed movement leaves the balance untouched.
	stored, err := db.Storage.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, stored.AvailableBalance.Equal(testutil.Amount(t, "50")))
}

func TestGateway_Submit_TriggersAlerts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "150"))
	rule := db.SeedAlertRule(t, customer.ID, "Low balance", model.AlertBalanceBelow,
		testutil.Amount(t, "100"), nil)

	gw := newGateway(db)

	decision, err := gw.Submit(ctx, request(customer.ID, account.ID, "100"))
	require.NoError(t, err)
	assert.Equal(t, StateLedgerPosted, decision.State)
	assert.Equal(t, []string{rule.ID}, decision.TriggeredAlerts)

	stored, err := db.Storage.GetAlertRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TriggerCount)
}

// failingLedger fails every movement, counting attempts.
type failingLedger struct {
	calls int
}

func (l *failingLedger) AtomicMove(ctx context.Context, accountID string, amount decimal.Decimal, description string, metadata map[string]string) (*service.MoveResult, error) {
	l.calls++
	return nil, &common.LedgerError{Reason: "posting engine unavailable"}
}

func TestGateway_Submit_LedgerFailureNotRetried(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	account := db.SeedAccount(t, customer.ID, "Current", testutil.Amount(t, "5000"))

	ledger := &failingLedger{}
	gw := New(db.Storage, ledger, alerts.NewService(db.Storage))

	decision, err := gw.Submit(ctx, request(customer.ID, account.ID, "200"))
	require.NoError(t, err)
	assert.Equal(t, StateRejected, decision.State)
	require.NotNil(t, decision.LedgerFailure)
	assert.Equal(t, 1, ledger.calls)
}

func TestGateway_Submit_UnknownCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)

	gw := newGateway(db)

	_, err := gw.Submit(context.Background(), request("no-such-customer", "acc-1", "200"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
