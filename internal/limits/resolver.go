// Package limits decides whether a proposed transaction fits within the
// single, daily and monthly ceilings of a customer's KYC limit tier.
package limits

import (
	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/model"
)

// Scope names which ceiling a transaction breached, if any.
type Scope string

// Breach scopes in evaluation order.
const (
	ScopeNone    Scope = ""
	ScopeSingle  Scope = "single"
	ScopeDaily   Scope = "daily"
	ScopeMonthly Scope = "monthly"
)

// Result is the outcome of a limit check.
type Result struct {
	Exceeded Scope
	Allowed  bool
}

// Check evaluates a proposed amount against a limit tier given the customer's
// accumulated debit totals. It is a pure function: accumulating the totals
// from transaction history is the caller's responsibility.
//
// An inactive tier imposes no restriction; disabling a tier removes its
// ceilings rather than blocking activity. Comparisons are inclusive: an
// amount equal to a ceiling is allowed, only exceeding it is a breach. The
// single ceiling is checked first, then daily, then monthly, short-circuiting
// so the reported scope is always the most specific applicable one.
func Check(tier *model.LimitTier, amount, dailySoFar, monthlySoFar decimal.Decimal) Result {
	if tier == nil || !tier.Active {
		return Result{Allowed: true}
	}

	if amount.GreaterThan(tier.Single) {
		return Result{Exceeded: ScopeSingle}
	}
	if dailySoFar.Add(amount).GreaterThan(tier.Daily) {
		return Result{Exceeded: ScopeDaily}
	}
	if monthlySoFar.Add(amount).GreaterThan(tier.Monthly) {
		return Result{Exceeded: ScopeMonthly}
	}

	return Result{Allowed: true}
}
