package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OverrideAction names the kind of admin override or configuration change an
// audit event records.
type OverrideAction string

// Audited admin actions.
const (
	ActionWaiveCoolingPeriod   OverrideAction = "waive_cooling_period"
	ActionLimitTierUpdated     OverrideAction = "transaction_limit_updated"
	ActionCoolingConfigUpdated OverrideAction = "cooling_period_updated"
	ActionScaThresholdUpdated  OverrideAction = "sca_threshold_updated"
	ActionManualCredit         OverrideAction = "manual_credit"
)

// OverrideEvent is one immutable audit record of an admin override or policy
// configuration change. Events are append-only; nothing in the engine updates
// or deletes them.
type OverrideEvent struct {
	CreatedAt     time.Time
	ID            string
	ActorID       string
	ActorRole     Role
	Action        OverrideAction
	TargetType    string
	TargetID      string
	Before        string
	After         string
	Justification string
}

// Validate ensures the event carries everything the audit trail requires.
func (e *OverrideEvent) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("event ID is required")
	}
	if strings.TrimSpace(e.ActorID) == "" {
		return fmt.Errorf("event actor is required")
	}
	if e.Action == "" {
		return fmt.Errorf("event action is required")
	}
	if strings.TrimSpace(e.TargetID) == "" {
		return fmt.Errorf("event target is required")
	}
	return nil
}

// MarshalSnapshot renders a before/after value as compact JSON for storage in
// an audit event. A marshal failure here would lose audit detail, so it is
// surfaced rather than swallowed.
func MarshalSnapshot(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit snapshot: %w", err)
	}
	return string(data), nil
}
