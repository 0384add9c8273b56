// Package cooling implements payee cooling-period gating: new payees must
// season for a configurable number of hours before their first payment, and
// admins may waive the wait after out-of-band verification.
package cooling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/service"
)

// MinWaiverReasonLength is the minimum trimmed length of a waiver
// justification.
const MinWaiverReasonLength = 5

// State is a payee's cooling status.
type State string

// Cooling states.
const (
	StateCleared State = "cleared"
	StateActive  State = "active"
)

// Status reports a payee's cooling state at a point in time. HoursRemaining
// is nil when the payee cleared through use or a disabled config, zero when
// the period has fully elapsed, and positive while the period is running.
type Status struct {
	HoursRemaining *int
	State          State
}

// PayeeStatus pairs a payee with its computed cooling status, for listings.
type PayeeStatus struct {
	Payee  model.Payee
	Status Status
}

// ComputeStatus derives a payee's cooling status from its creation time and
// the rail's active configuration. The remaining time is rounded up to whole
// hours so a payee with a minute left still reports one hour remaining; the
// customer-facing message must never imply availability before it is true.
func ComputeStatus(payee *model.Payee, cfg *model.CoolingConfig, now time.Time) Status {
	if payee.Cleared() {
		return Status{State: StateCleared}
	}
	if cfg == nil || !cfg.Active || cfg.Hours == 0 {
		return Status{State: StateCleared}
	}

	coolingEnd := payee.CreatedAt.Add(time.Duration(cfg.Hours) * time.Hour)
	if !now.Before(coolingEnd) {
		zero := 0
		return Status{State: StateCleared, HoursRemaining: &zero}
	}

	remaining := coolingEnd.Sub(now)
	hours := int((remaining + time.Hour - 1) / time.Hour)
	return Status{State: StateActive, HoursRemaining: &hours}
}

// Manager exposes cooling status queries and the admin waiver operation over
// persistent payee and configuration state.
type Manager struct {
	storage service.Storage
	nowFn   func() time.Time
}

// NewManager creates a cooling-period manager backed by the given storage.
func NewManager(storage service.Storage) *Manager {
	return &Manager{
		storage: storage,
		nowFn:   time.Now,
	}
}

// SetNowFunc overrides the manager's clock. Used by tests.
func (m *Manager) SetNowFunc(nowFn func() time.Time) {
	m.nowFn = nowFn
}

// Status returns the payee's current cooling status. Configuration is fetched
// fresh on every call so admin edits take effect without a restart.
func (m *Manager) Status(ctx context.Context, payeeID string) (Status, error) {
	payee, err := m.storage.GetPayee(ctx, payeeID)
	if err != nil {
		return Status{}, fmt.Errorf("failed to load payee: %w", err)
	}

	cfg, err := m.railConfig(ctx, payee.Rail)
	if err != nil {
		return Status{}, err
	}

	return ComputeStatus(payee, cfg, m.nowFn()), nil
}

// List returns all of a customer's payees with their live cooling status.
func (m *Manager) List(ctx context.Context, customerID string) ([]PayeeStatus, error) {
	payees, err := m.storage.GetPayeesByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payees: %w", err)
	}

	now := m.nowFn()
	configs := make(map[string]*model.CoolingConfig)

	statuses := make([]PayeeStatus, 0, len(payees))
	for i := range payees {
		cfg, ok := configs[payees[i].Rail]
		if !ok {
			cfg, err = m.railConfig(ctx, payees[i].Rail)
			if err != nil {
				return nil, err
			}
			configs[payees[i].Rail] = cfg
		}
		statuses = append(statuses, PayeeStatus{
			Payee:  payees[i],
			Status: ComputeStatus(&payees[i], cfg, now),
		})
	}
	return statuses, nil
}

// Waive clears a payee's cooling period early on behalf of an admin. It sets
// FirstUsedAt exactly as a genuine first payment would, so downstream status
// queries cannot distinguish a waiver from organic use except via the audit
// trail. The waiver and its audit event are written in one transaction.
//
// The caller is responsible for having authorised the actor's role; the
// manager only validates the operation itself.
func (m *Manager) Waive(ctx context.Context, actor model.Actor, payeeID, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) < MinWaiverReasonLength {
		return common.NewValidationError("reason",
			fmt.Sprintf("justification must be at least %d characters", MinWaiverReasonLength))
	}

	payee, err := m.storage.GetPayee(ctx, payeeID)
	if err != nil {
		return fmt.Errorf("failed to load payee: %w", err)
	}

	cfg, err := m.railConfig(ctx, payee.Rail)
	if err != nil {
		return err
	}

	now := m.nowFn()
	if status := ComputeStatus(payee, cfg, now); status.State == StateCleared {
		return common.NewValidationError("payee", "cooling period is already cleared")
	}

	before, err := model.MarshalSnapshot(map[string]any{"first_used_at": nil})
	if err != nil {
		return err
	}
	after, err := model.MarshalSnapshot(map[string]any{"first_used_at": now})
	if err != nil {
		return err
	}

	event := &model.OverrideEvent{
		ID:            uuid.NewString(),
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		Action:        model.ActionWaiveCoolingPeriod,
		TargetType:    "payee",
		TargetID:      payee.ID,
		Before:        before,
		After:         after,
		Justification: reason,
		CreatedAt:     now,
	}

	if err := m.storage.WaivePayee(ctx, payee.ID, now, event); err != nil {
		return fmt.Errorf("failed to waive cooling period: %w", err)
	}

	slog.Info("cooling period waived",
		"payee_id", payee.ID,
		"customer_id", payee.CustomerID,
		"actor", actor.ID)
	return nil
}

// railConfig loads the rail's cooling config. A rail with no config row is
// treated as unconfigured, which clears immediately, the same as inactive.
func (m *Manager) railConfig(ctx context.Context, rail string) (*model.CoolingConfig, error) {
	cfg, err := m.storage.GetCoolingConfig(ctx, rail)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cooling config for rail %s: %w", rail, err)
	}
	return cfg, nil
}
