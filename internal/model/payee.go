// Package model defines the core domain types for the risk and controls engine.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Payee represents a saved payment beneficiary belonging to a customer.
// A newly added payee must sit out its rail's cooling period before it can
// receive a first payment; FirstUsedAt records when that period ended, either
// through a genuine first payment or an admin waiver.
type Payee struct {
	CreatedAt   time.Time
	FirstUsedAt *time.Time
	ID          string
	CustomerID  string
	Name        string
	Rail        string
	Favourite   bool
}

// Cleared reports whether the payee has ever been used. Once FirstUsedAt is
// set the payee is permanently cleared; cooling is never re-armed.
func (p *Payee) Cleared() bool {
	return p.FirstUsedAt != nil
}

// Validate ensures the payee has valid data before it is persisted.
func (p *Payee) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("payee ID is required")
	}
	if strings.TrimSpace(p.CustomerID) == "" {
		return fmt.Errorf("payee customer ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("payee name is required")
	}
	if strings.TrimSpace(p.Rail) == "" {
		return fmt.Errorf("payee rail is required")
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("payee creation time is required")
	}
	return nil
}
