package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finveil/riskgate/internal/service"
)

// DefaultWindow is how far back the evaluation window reaches when loading
// recent activity. Calendar-month rules additionally bound themselves to the
// current month.
const DefaultWindow = 90 * 24 * time.Hour

// Service loads a customer's rules and activity from storage and runs the
// evaluator over them.
type Service struct {
	storage service.Storage
	nowFn   func() time.Time
	window  time.Duration
}

// NewService creates an alert evaluation service backed by the given storage.
func NewService(storage service.Storage) *Service {
	return &Service{
		storage: storage,
		nowFn:   time.Now,
		window:  DefaultWindow,
	}
}

// SetNowFunc overrides the service's clock. Used by tests.
func (s *Service) SetNowFunc(nowFn func() time.Time) {
	s.nowFn = nowFn
}

// EvaluateCustomer evaluates all of a customer's rules against their recent
// activity and returns the triggered rule IDs. It does not touch trigger
// counters; re-running it on unchanged data yields the same result.
func (s *Service) EvaluateCustomer(ctx context.Context, customerID string) ([]string, error) {
	rules, err := s.storage.GetAlertRulesByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	now := s.nowFn()
	transactions, err := s.storage.GetRecentTransactions(ctx, customerID, now.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}

	accounts, err := s.storage.GetAccountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	return Evaluate(rules, transactions, accounts, now), nil
}

// EvaluateAndRecord evaluates a customer's rules and bumps the trigger
// counters of every rule that matched. Counters are informational; they do
// not suppress repeat triggers on later evaluations.
func (s *Service) EvaluateAndRecord(ctx context.Context, customerID string) ([]string, error) {
	triggered, err := s.EvaluateCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(triggered) == 0 {
		return nil, nil
	}

	if err := s.storage.RecordAlertTriggers(ctx, triggered, s.nowFn()); err != nil {
		return nil, fmt.Errorf("failed to record alert triggers: %w", err)
	}

	slog.Info("spending alerts triggered",
		"customer_id", customerID,
		"count", len(triggered))
	return triggered, nil
}
