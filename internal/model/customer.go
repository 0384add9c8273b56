package model

import (
	"fmt"
	"strings"
	"time"
)

// KYCLevel is a customer's verified identity tier. It selects which
// transaction limit tier applies to the customer's money movements.
type KYCLevel string

// Known KYC verification levels, in ascending order of verification depth.
const (
	KYCBasic    KYCLevel = "basic"
	KYCStandard KYCLevel = "standard"
	KYCEnhanced KYCLevel = "enhanced"
	KYCFull     KYCLevel = "full"
)

// ValidKYCLevel reports whether the given level is one the bank recognises.
func ValidKYCLevel(level KYCLevel) bool {
	switch level {
	case KYCBasic, KYCStandard, KYCEnhanced, KYCFull:
		return true
	}
	return false
}

// Customer is the slice of a customer record this engine needs: identity and
// the KYC level that keys their limit tier.
type Customer struct {
	CreatedAt time.Time
	ID        string
	Name      string
	KYCLevel  KYCLevel
}

// Validate ensures the customer record has valid data.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("customer ID is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("customer name is required")
	}
	if !ValidKYCLevel(c.KYCLevel) {
		return fmt.Errorf("unknown KYC level %q", c.KYCLevel)
	}
	return nil
}

// Role is an already-authenticated actor's privilege level. Authentication
// itself happens upstream; this engine only checks capability.
type Role string

// Privilege levels for admin-facing operations.
const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Actor identifies who is performing an admin operation.
type Actor struct {
	ID   string
	Role Role
}
