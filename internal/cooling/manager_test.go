package cooling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/testutil"
)

func TestComputeStatus(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cfg := &model.CoolingConfig{Rail: "domestic_sameday", Hours: 24, Active: true}

	tests := []struct {
		name      string
		payee     model.Payee
		cfg       *model.CoolingConfig
		now       time.Time
		wantState State
		wantHours *int
	}{
		{
			name:      "mid period rounds up to whole hours",
			payee:     model.Payee{CreatedAt: created},
			cfg:       cfg,
			now:       created.Add(23 * time.Hour),
			wantState: StateActive,
			wantHours: intPtr(1),
		},
		{
			name:      "one minute left still reports one hour",
			payee:     model.Payee{CreatedAt: created},
			cfg:       cfg,
			now:       created.Add(24*time.Hour - time.Minute),
			wantState: StateActive,
			wantHours: intPtr(1),
		},
		{
			name:      "just created reports full period",
			payee:     model.Payee{CreatedAt: created},
			cfg:       cfg,
			now:       created,
			wantState: StateActive,
			wantHours: intPtr(24),
		},
		{
			name:      "period elapsed exactly",
			payee:     model.Payee{CreatedAt: created},
			cfg:       cfg,
			now:       created.Add(24 * time.Hour),
			wantState: StateCleared,
			wantHours: intPtr(0),
		},
		{
			name: "already used payee is cleared regardless of clock",
			payee: model.Payee{
				CreatedAt:   created,
				FirstUsedAt: timePtr(created.Add(time.Hour)),
			},
			cfg:       cfg,
			now:       created.Add(2 * time.Hour),
			wantState: StateCleared,
			wantHours: nil,
		},
		{
			name:      "inactive config clears immediately",
			payee:     model.Payee{CreatedAt: created},
			cfg:       &model.CoolingConfig{Rail: "domestic_sameday", Hours: 24, Active: false},
			now:       created,
			wantState: StateCleared,
			wantHours: nil,
		},
		{
			name:      "zero-hour config clears immediately",
			payee:     model.Payee{CreatedAt: created},
			cfg:       &model.CoolingConfig{Rail: "domestic_sameday", Hours: 0, Active: true},
			now:       created,
			wantState: StateCleared,
			wantHours: nil,
		},
		{
			name:      "unconfigured rail clears immediately",
			payee:     model.Payee{CreatedAt: created},
			cfg:       nil,
			now:       created,
			wantState: StateCleared,
			wantHours: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatus(&tt.payee, tt.cfg, tt.now)
			assert.Equal(t, tt.wantState, got.State)
			if tt.wantHours == nil {
				assert.Nil(t, got.HoursRemaining)
			} else {
				require.NotNil(t, got.HoursRemaining)
				assert.Equal(t, *tt.wantHours, *got.HoursRemaining)
			}
		})
	}
}

// The reported hours must never increase as the clock moves forward.
func TestComputeStatus_Monotonic(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cfg := &model.CoolingConfig{Rail: "domestic_sameday", Hours: 48, Active: true}
	payee := model.Payee{CreatedAt: created}

	prev := 48 + 1
	for offset := time.Duration(0); offset <= 49*time.Hour; offset += 17 * time.Minute {
		status := ComputeStatus(&payee, cfg, created.Add(offset))
		require.NotNil(t, status.HoursRemaining, "offset %s", offset)
		if *status.HoursRemaining > prev {
			t.Fatalf("hours remaining increased from %d to %d at offset %s",
				prev, *status.HoursRemaining, offset)
		}
		prev = *status.HoursRemaining
	}
}

func TestManager_Status(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	created := time.Now().UTC().Add(-23 * time.Hour)
	payee := db.SeedPayee(t, customer.ID, "Landlord", "domestic_sameday", created)

	manager := NewManager(db.Storage)

	// The seeded domestic_sameday rail cools for 24 hours.
	status, err := manager.Status(ctx, payee.ID)
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
	require.NotNil(t, status.HoursRemaining)
	assert.Equal(t, 1, *status.HoursRemaining)

	_, err = manager.Status(ctx, "no-such-payee")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestManager_Status_UnconfiguredRail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	payee := db.SeedPayee(t, customer.ID, "Landlord", "carrier_pigeon", time.Now().UTC())

	manager := NewManager(db.Storage)

	status, err := manager.Status(ctx, payee.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCleared, status.State)
	assert.Nil(t, status.HoursRemaining)
}

func TestManager_Waive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	payee := db.SeedPayee(t, customer.ID, "Landlord", "domestic_sameday", time.Now().UTC().Add(-time.Hour))

	manager := NewManager(db.Storage)
	actor := model.Actor{ID: "ops-1", Role: model.RoleAdmin}

	err := manager.Waive(ctx, actor, payee.ID, "verified by phone callback")
	require.NoError(t, err)

	status, err := manager.Status(ctx, payee.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCleared, status.State)
	assert.Nil(t, status.HoursRemaining)

	// The waiver and its audit event land together.
	events, err := db.Storage.ListOverrideEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ActionWaiveCoolingPeriod, events[0].Action)
	assert.Equal(t, payee.ID, events[0].TargetID)
	assert.Equal(t, "verified by phone callback", events[0].Justification)

	// A second waiver finds the payee already cleared.
	err = manager.Waive(ctx, actor, payee.ID, "verified by phone callback")
	var validationErr *common.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestManager_Waive_ShortReason(t *testing.T) {
	db := testutil.SetupTestDB(t)

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	payee := db.SeedPayee(t, customer.ID, "Landlord", "domestic_sameday", time.Now().UTC())

	manager := NewManager(db.Storage)
	actor := model.Actor{ID: "ops-1", Role: model.RoleAdmin}

	err := manager.Waive(context.Background(), actor, payee.ID, "  ok  ")
	var validationErr *common.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "reason", validationErr.Field)

	// Nothing was audited for the refused waiver.
	events, err := db.Storage.ListOverrideEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestManager_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	customer := db.SeedCustomer(t, "Priya Shah", model.KYCStandard)
	now := time.Now().UTC()
	db.SeedPayee(t, customer.ID, "Landlord", "domestic_sameday", now.Add(-48*time.Hour))
	db.SeedPayee(t, customer.ID, "Plumber", "domestic_sameday", now)

	manager := NewManager(db.Storage)

	statuses, err := manager.List(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byName := make(map[string]Status, len(statuses))
	for _, ps := range statuses {
		byName[ps.Payee.Name] = ps.Status
	}
	assert.Equal(t, StateCleared, byName["Landlord"].State)
	assert.Equal(t, StateActive, byName["Plumber"].State)
}

func TestManager_Waive_MissingPayee(t *testing.T) {
	db := testutil.SetupTestDB(t)

	manager := NewManager(db.Storage)
	actor := model.Actor{ID: "ops-1", Role: model.RoleAdmin}

	err := manager.Waive(context.Background(), actor, "no-such-payee", "verified by phone callback")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func intPtr(n int) *int { return &n }

func timePtr(tm time.Time) *time.Time { return &tm }
