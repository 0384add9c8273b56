package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AlertRuleKind identifies which matching predicate a spending alert uses.
type AlertRuleKind string

// The five supported spending alert kinds.
const (
	AlertSingleTransaction AlertRuleKind = "single_transaction"
	AlertCategoryMonthly   AlertRuleKind = "category_monthly"
	AlertBalanceBelow      AlertRuleKind = "balance_below"
	AlertMerchantPayment   AlertRuleKind = "merchant_payment"
	AlertLargeIncoming     AlertRuleKind = "large_incoming"
)

// ValidAlertRuleKind reports whether kind is one of the supported kinds.
func ValidAlertRuleKind(kind AlertRuleKind) bool {
	switch kind {
	case AlertSingleTransaction, AlertCategoryMonthly, AlertBalanceBelow,
		AlertMerchantPayment, AlertLargeIncoming:
		return true
	}
	return false
}

// AlertRule is one customer-defined spending alert. The kind determines which
// scoping fields are meaningful: AccountID scopes single_transaction,
// balance_below and large_incoming; Category scopes category_monthly;
// MerchantName scopes merchant_payment.
type AlertRule struct {
	CreatedAt       time.Time
	LastTriggeredAt *time.Time
	ID              string
	CustomerID      string
	Name            string
	Kind            AlertRuleKind
	AccountID       string
	Category        string
	MerchantName    string
	Threshold       decimal.Decimal
	TriggerCount    int
	Active          bool
}

// Validate ensures the rule is well formed before it is persisted. Evaluation
// independently tolerates malformed rules by treating them as never
// triggering, so a bad row that slips through degrades safely.
func (r *AlertRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("rule ID is required")
	}
	if strings.TrimSpace(r.CustomerID) == "" {
		return fmt.Errorf("rule customer ID is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name is required")
	}
	if !ValidAlertRuleKind(r.Kind) {
		return fmt.Errorf("unknown alert rule kind %q", r.Kind)
	}
	if !r.Threshold.IsPositive() {
		return fmt.Errorf("rule threshold must be greater than zero")
	}
	switch r.Kind {
	case AlertCategoryMonthly:
		if strings.TrimSpace(r.Category) == "" {
			return fmt.Errorf("category_monthly rule requires a category")
		}
	case AlertMerchantPayment:
		if strings.TrimSpace(r.MerchantName) == "" {
			return fmt.Errorf("merchant_payment rule requires a merchant name")
		}
	}
	return nil
}
