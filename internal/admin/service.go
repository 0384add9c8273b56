// Package admin implements the override operations available to bank staff:
// waiving a payee's cooling period, issuing manual credits, and editing the
// bank-wide limit, cooling and SCA policy. Every operation authorises the
// actor's capability first, and every state change is written together with
// its audit event.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/cooling"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/service"
)

// Service exposes the admin override surface. Callers arrive with an already
// authenticated actor; the service checks capability, never identity.
type Service struct {
	storage service.Storage
	cooling *cooling.Manager
	nowFn   func() time.Time
}

// NewService creates the admin service over the given storage.
func NewService(storage service.Storage, coolingManager *cooling.Manager) *Service {
	return &Service{
		storage: storage,
		cooling: coolingManager,
		nowFn:   time.Now,
	}
}

// SetNowFunc overrides the service's clock. Used by tests.
func (s *Service) SetNowFunc(nowFn func() time.Time) {
	s.nowFn = nowFn
}

// requireRole is the single capability check every override operation runs
// before touching state. A super admin can do everything an admin can.
func requireRole(actor model.Actor, minimum model.Role) error {
	switch minimum {
	case model.RoleAdmin:
		if actor.Role == model.RoleAdmin || actor.Role == model.RoleSuperAdmin {
			return nil
		}
	case model.RoleSuperAdmin:
		if actor.Role == model.RoleSuperAdmin {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires %s", common.ErrForbidden, actor.Role, minimum)
}

// WaiveCoolingPeriod clears a payee's cooling period early with a mandatory
// justification. Available to general admins.
func (s *Service) WaiveCoolingPeriod(ctx context.Context, actor model.Actor, payeeID, reason string) error {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return err
	}
	return s.cooling.Waive(ctx, actor, payeeID, reason)
}

// ManualCredit credits a customer account outside the normal payment flow,
// with a mandatory justification. The movement and its audit event are
// applied in one transaction. Available to general admins.
func (s *Service) ManualCredit(ctx context.Context, actor model.Actor, accountID string, amount decimal.Decimal, reason string) (*service.MoveResult, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, common.NewValidationError("amount", "credit amount must be greater than zero")
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < cooling.MinWaiverReasonLength {
		return nil, common.NewValidationError("reason",
			fmt.Sprintf("justification must be at least %d characters", cooling.MinWaiverReasonLength))
	}

	account, err := s.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	after, err := model.MarshalSnapshot(map[string]any{"amount": amount})
	if err != nil {
		return nil, err
	}

	event := &model.OverrideEvent{
		ID:            uuid.NewString(),
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		Action:        model.ActionManualCredit,
		TargetType:    "account",
		TargetID:      account.ID,
		After:         after,
		Justification: reason,
		CreatedAt:     s.nowFn(),
	}

	result, err := s.storage.ManualCredit(ctx, account.ID, amount, "Manual credit: "+reason, event)
	if err != nil {
		return nil, fmt.Errorf("failed to apply manual credit: %w", err)
	}

	slog.Info("manual credit applied",
		"account_id", account.ID,
		"amount", amount,
		"actor", actor.ID)
	return result, nil
}

// UpdateLimitTier replaces the limit tier for a KYC level. A tier with
// single > daily or daily > monthly is refused on write; it is never stored
// and interpreted later. Available to super admins only.
func (s *Service) UpdateLimitTier(ctx context.Context, actor model.Actor, tier *model.LimitTier) error {
	if err := requireRole(actor, model.RoleSuperAdmin); err != nil {
		return err
	}
	if err := tier.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigInconsistent, err)
	}

	prior, err := s.storage.GetLimitTier(ctx, tier.KYCLevel)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to load current tier: %w", err)
	}

	event, err := s.buildConfigEvent(actor, model.ActionLimitTierUpdated, "limit_tier", string(tier.KYCLevel), prior, tier)
	if err != nil {
		return err
	}

	tier.UpdatedAt = s.nowFn()
	if err := s.storage.SaveLimitTier(ctx, tier, event); err != nil {
		return fmt.Errorf("failed to save limit tier: %w", err)
	}

	slog.Info("limit tier updated", "kyc_level", tier.KYCLevel, "actor", actor.ID)
	return nil
}

// UpdateCoolingConfig replaces the cooling-period config for a rail.
// Available to super admins only.
func (s *Service) UpdateCoolingConfig(ctx context.Context, actor model.Actor, cfg *model.CoolingConfig) error {
	if err := requireRole(actor, model.RoleSuperAdmin); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return common.NewValidationError("cooling config", err.Error())
	}

	prior, err := s.storage.GetCoolingConfig(ctx, cfg.Rail)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to load current config: %w", err)
	}

	event, err := s.buildConfigEvent(actor, model.ActionCoolingConfigUpdated, "cooling_config", cfg.Rail, prior, cfg)
	if err != nil {
		return err
	}

	cfg.UpdatedAt = s.nowFn()
	if err := s.storage.SaveCoolingConfig(ctx, cfg, event); err != nil {
		return fmt.Errorf("failed to save cooling config: %w", err)
	}

	slog.Info("cooling config updated", "rail", cfg.Rail, "hours", cfg.Hours, "actor", actor.ID)
	return nil
}

// SetScaThreshold replaces the global SCA step-up amount threshold.
// Available to super admins only.
func (s *Service) SetScaThreshold(ctx context.Context, actor model.Actor, amount decimal.Decimal) error {
	if err := requireRole(actor, model.RoleSuperAdmin); err != nil {
		return err
	}
	if amount.IsNegative() {
		return common.NewValidationError("amount", "SCA threshold must not be negative")
	}

	prior, err := s.storage.GetScaSetting(ctx, model.ScaSettingAmountThreshold)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to load current setting: %w", err)
	}

	setting := &model.ScaSetting{
		Key:         model.ScaSettingAmountThreshold,
		Value:       amount.String(),
		Description: "Amount at or above which strong customer authentication is required",
		UpdatedAt:   s.nowFn(),
	}

	event, err := s.buildConfigEvent(actor, model.ActionScaThresholdUpdated, "sca_setting", setting.Key, prior, setting)
	if err != nil {
		return err
	}

	if err := s.storage.SaveScaSetting(ctx, setting, event); err != nil {
		return fmt.Errorf("failed to save SCA setting: %w", err)
	}

	slog.Info("SCA threshold updated", "threshold", amount, "actor", actor.ID)
	return nil
}

// buildConfigEvent assembles the audit event for a config edit with its
// before and after snapshots. Config edits need no justification text but
// are still fully audited.
func (s *Service) buildConfigEvent(actor model.Actor, action model.OverrideAction, targetType, targetID string, prior, next any) (*model.OverrideEvent, error) {
	before, err := model.MarshalSnapshot(prior)
	if err != nil {
		return nil, err
	}
	after, err := model.MarshalSnapshot(next)
	if err != nil {
		return nil, err
	}

	return &model.OverrideEvent{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Before:     before,
		After:      after,
		CreatedAt:  s.nowFn(),
	}, nil
}
