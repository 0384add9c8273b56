package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/model"
)

const alertRuleColumns = `id, customer_id, name, kind, account_id, category, merchant_name,
	threshold, active, last_triggered_at, trigger_count, created_at`

// SaveAlertRule inserts or replaces a spending alert rule.
func (s *SQLiteStorage) SaveAlertRule(ctx context.Context, rule *model.AlertRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid alert rule: %w", err)
	}

	query := `
		INSERT INTO alert_rules (` + alertRuleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			account_id = excluded.account_id,
			category = excluded.category,
			merchant_name = excluded.merchant_name,
			threshold = excluded.threshold,
			active = excluded.active`

	_, err := s.db.ExecContext(ctx, query,
		rule.ID, rule.CustomerID, rule.Name, rule.Kind,
		rule.AccountID, rule.Category, rule.MerchantName,
		rule.Threshold.String(), rule.Active, rule.LastTriggeredAt,
		rule.TriggerCount, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save alert rule: %w", err)
	}
	return nil
}

// GetAlertRule returns a rule by ID.
func (s *SQLiteStorage) GetAlertRule(ctx context.Context, id string) (*model.AlertRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT ` + alertRuleColumns + ` FROM alert_rules WHERE id = ?`

	rule, err := scanAlertRule(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("alert rule %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert rule: %w", err)
	}
	return rule, nil
}

// GetAlertRulesByCustomer returns all of a customer's rules, active first.
func (s *SQLiteStorage) GetAlertRulesByCustomer(ctx context.Context, customerID string) ([]model.AlertRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(customerID, "customerID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + alertRuleColumns + ` FROM alert_rules
		WHERE customer_id = ?
		ORDER BY active DESC, name`

	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert rules: %w", err)
	}
	defer rows.Close()

	var rules []model.AlertRule
	for rows.Next() {
		rule, err := scanAlertRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rules: %w", err)
	}

	return rules, nil
}

// SetAlertRuleActive enables or disables a rule.
func (s *SQLiteStorage) SetAlertRuleActive(ctx context.Context, id string, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE alert_rules SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update alert rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert rule %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// RecordAlertTriggers bumps the trigger counters of the given rules. The
// counters are informational only; nothing reads them to suppress repeats.
func (s *SQLiteStorage) RecordAlertTriggers(ctx context.Context, ruleIDs []string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ruleIDs) == 0 {
		return fmt.Errorf("%w: ruleIDs", ErrEmptySlice)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ruleIDs)), ",")
	query := `UPDATE alert_rules
		SET last_triggered_at = ?, trigger_count = trigger_count + 1
		WHERE id IN (` + placeholders + `)`

	args := make([]any, 0, len(ruleIDs)+1)
	args = append(args, at)
	for _, id := range ruleIDs {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record alert triggers: %w", err)
	}
	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAlertRule(row scanner) (*model.AlertRule, error) {
	var rule model.AlertRule
	var accountID, category, merchant sql.NullString
	var threshold string
	var lastTriggered sql.NullTime

	err := row.Scan(
		&rule.ID, &rule.CustomerID, &rule.Name, &rule.Kind,
		&accountID, &category, &merchant,
		&threshold, &rule.Active, &lastTriggered,
		&rule.TriggerCount, &rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.AccountID = accountID.String
	rule.Category = category.String
	rule.MerchantName = merchant.String
	rule.LastTriggeredAt = nullableTime(lastTriggered)
	if rule.Threshold, err = scanDecimal(threshold, "threshold"); err != nil {
		return nil, err
	}
	return &rule, nil
}
