package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoveRequest is one proposed money movement, built by a customer or admin
// action and submitted to the policy gateway for evaluation.
//
// PayeeID is empty for movements that do not reference a saved payee (for
// example an own-account transfer); cooling checks only apply when it is set.
// SCAProof carries the caller's completed step-up evidence on resubmission;
// the gateway checks its presence, not its validity, since verifying the
// step-up belongs to the authentication layer upstream.
type MoveRequest struct {
	ID          string
	CustomerID  string
	AccountID   string
	PayeeID     string
	Description string
	SCAProof    string
	Amount      decimal.Decimal
}

// Validate ensures the request is well formed before any policy check runs.
func (r *MoveRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("request ID is required")
	}
	if strings.TrimSpace(r.CustomerID) == "" {
		return fmt.Errorf("request customer ID is required")
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return fmt.Errorf("request account ID is required")
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("request amount must be greater than zero")
	}
	return nil
}
