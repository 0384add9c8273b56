// Package alerts evaluates customer-defined spending alert rules against
// recent account activity.
package alerts

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finveil/riskgate/internal/model"
)

// Evaluate matches a customer's rules against recent transactions and current
// account balances and returns the IDs of the rules that trigger, sorted.
//
// Evaluation is pure and deterministic: the same inputs always produce the
// same output, and nothing here mutates rule state. Recording trigger
// counters is a separate storage write the caller makes afterwards. Inactive
// rules are skipped; a rule whose configuration is impossible for its kind
// never triggers rather than erroring, so one malformed rule cannot block the
// rest.
func Evaluate(rules []model.AlertRule, transactions []model.Transaction, accounts []model.Account, now time.Time) []string {
	var triggered []string
	for i := range rules {
		rule := &rules[i]
		if !rule.Active {
			continue
		}
		if matches(rule, transactions, accounts, now) {
			triggered = append(triggered, rule.ID)
		}
	}

	sort.Strings(triggered)
	return triggered
}

func matches(rule *model.AlertRule, transactions []model.Transaction, accounts []model.Account, now time.Time) bool {
	if !rule.Threshold.IsPositive() {
		return false
	}

	switch rule.Kind {
	case model.AlertSingleTransaction:
		return anyTransactionAtOrAbove(rule, transactions, "")
	case model.AlertLargeIncoming:
		return anyTransactionAtOrAbove(rule, transactions, model.DirectionCredit)
	case model.AlertCategoryMonthly:
		return categoryMonthlyAtOrAbove(rule, transactions, now)
	case model.AlertBalanceBelow:
		return anyBalanceBelow(rule, accounts)
	case model.AlertMerchantPayment:
		return merchantPaymentAtOrAbove(rule, transactions)
	}
	return false
}

// anyTransactionAtOrAbove reports whether any transaction in the window,
// optionally filtered by account and direction, meets the rule's threshold.
func anyTransactionAtOrAbove(rule *model.AlertRule, transactions []model.Transaction, direction model.TransactionDirection) bool {
	for i := range transactions {
		txn := &transactions[i]
		if rule.AccountID != "" && txn.AccountID != rule.AccountID {
			continue
		}
		if direction != "" && txn.Direction != direction {
			continue
		}
		if txn.Amount.GreaterThanOrEqual(rule.Threshold) {
			return true
		}
	}
	return false
}

// categoryMonthlyAtOrAbove sums the current calendar month's debits in the
// rule's category. A rule with no category set can never trigger.
func categoryMonthlyAtOrAbove(rule *model.AlertRule, transactions []model.Transaction, now time.Time) bool {
	if strings.TrimSpace(rule.Category) == "" {
		return false
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	total := decimal.Zero
	for i := range transactions {
		txn := &transactions[i]
		if txn.Direction != model.DirectionDebit {
			continue
		}
		if txn.Date.Before(monthStart) || txn.Date.After(now) {
			continue
		}
		if !strings.EqualFold(txn.Category, rule.Category) {
			continue
		}
		total = total.Add(txn.Amount)
	}
	return total.GreaterThanOrEqual(rule.Threshold)
}

// anyBalanceBelow reports whether the scoped account, or any account when the
// rule is unscoped, has an available balance strictly below the threshold.
func anyBalanceBelow(rule *model.AlertRule, accounts []model.Account) bool {
	for i := range accounts {
		acct := &accounts[i]
		if rule.AccountID != "" && acct.ID != rule.AccountID {
			continue
		}
		if acct.AvailableBalance.LessThan(rule.Threshold) {
			return true
		}
	}
	return false
}

// merchantPaymentAtOrAbove matches counterparty names case-insensitively. A
// rule with no merchant name set can never trigger.
func merchantPaymentAtOrAbove(rule *model.AlertRule, transactions []model.Transaction) bool {
	merchant := strings.TrimSpace(rule.MerchantName)
	if merchant == "" {
		return false
	}

	for i := range transactions {
		txn := &transactions[i]
		if !strings.EqualFold(txn.Counterparty, merchant) {
			continue
		}
		if txn.Amount.GreaterThanOrEqual(rule.Threshold) {
			return true
		}
	}
	return false
}
