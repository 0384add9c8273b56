package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CoolingConfig holds the cooling-period policy for one payment rail.
// Hours of 0, or Active false, means payees on the rail clear immediately.
type CoolingConfig struct {
	UpdatedAt   time.Time
	Rail        string
	Description string
	Hours       int
	Active      bool
}

// Validate ensures the config can be applied.
func (c *CoolingConfig) Validate() error {
	if strings.TrimSpace(c.Rail) == "" {
		return fmt.Errorf("cooling config rail is required")
	}
	if c.Hours < 0 {
		return fmt.Errorf("cooling period hours must not be negative")
	}
	return nil
}

// LimitTier holds the three transaction ceilings for one KYC level.
// An inactive tier imposes no restriction at all; deactivation is a
// deliberate fail-open policy choice, not a lockout.
type LimitTier struct {
	UpdatedAt time.Time
	KYCLevel  KYCLevel
	Single    decimal.Decimal
	Daily     decimal.Decimal
	Monthly   decimal.Decimal
	Active    bool
}

// Validate enforces the single <= daily <= monthly ordering and non-negative
// ceilings. A tier violating the ordering must be refused on write; it is
// never interpreted at read time.
func (t *LimitTier) Validate() error {
	if !ValidKYCLevel(t.KYCLevel) {
		return fmt.Errorf("unknown KYC level %q", t.KYCLevel)
	}
	if t.Single.IsNegative() || t.Daily.IsNegative() || t.Monthly.IsNegative() {
		return fmt.Errorf("limit ceilings must not be negative")
	}
	if t.Single.GreaterThan(t.Daily) {
		return fmt.Errorf("single-transaction ceiling %s exceeds daily ceiling %s", t.Single, t.Daily)
	}
	if t.Daily.GreaterThan(t.Monthly) {
		return fmt.Errorf("daily ceiling %s exceeds monthly ceiling %s", t.Daily, t.Monthly)
	}
	return nil
}

// ScaSettingAmountThreshold is the setting key for the strong customer
// authentication step-up amount.
const ScaSettingAmountThreshold = "sca_amount_threshold"

// ScaSetting is one keyed strong-customer-authentication configuration row.
// Values are stored as text and parsed by the reader that knows the key.
type ScaSetting struct {
	UpdatedAt   time.Time
	Key         string
	Value       string
	Description string
}

// AmountValue parses the setting's value as a decimal amount.
func (s *ScaSetting) AmountValue() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setting %s has non-numeric value %q: %w", s.Key, s.Value, err)
	}
	return amount, nil
}

// Validate ensures the setting can be applied.
func (s *ScaSetting) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("setting key is required")
	}
	if strings.TrimSpace(s.Value) == "" {
		return fmt.Errorf("setting value is required")
	}
	return nil
}
