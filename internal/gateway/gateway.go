// Package gateway implements the policy façade every money-movement entry
// point consults before touching the ledger. It composes the cooling-period
// check, the limit tier check and the strong customer authentication step-up
// into a single allow, deny or step-up decision, and only calls the ledger
// after a positive decision.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finveil/riskgate/internal/alerts"
	"github.com/finveil/riskgate/internal/common"
	"github.com/finveil/riskgate/internal/cooling"
	"github.com/finveil/riskgate/internal/limits"
	"github.com/finveil/riskgate/internal/model"
	"github.com/finveil/riskgate/internal/service"
)

// State is a money-movement request's position in the gateway's state
// machine. SCARequired, LedgerPosted and Rejected are terminal for a given
// submission; a caller that wants another attempt must resubmit a fresh
// request, which re-runs every check.
type State string

// Request states.
const (
	StateReceived     State = "received"
	StateCoolingOK    State = "cooling-checked"
	StateLimitOK      State = "limit-checked"
	StateSCARequired  State = "sca-required"
	StateApproved     State = "approved"
	StateLedgerPosted State = "ledger-posted"
	StateRejected     State = "rejected"
)

// Decision is the gateway's verdict on one submitted request. Exactly one of
// Rejection, LedgerFailure or Result is set for the terminal states Rejected
// (policy), Rejected (ledger) and LedgerPosted; an SCARequired decision
// carries the step-up rejection so callers can render it.
type Decision struct {
	Rejection       *common.PolicyRejection
	LedgerFailure   *common.LedgerError
	Result          *service.MoveResult
	TriggeredAlerts []string
	State           State
}

// Gateway evaluates money-movement requests against current policy.
type Gateway struct {
	storage service.Storage
	ledger  service.Ledger
	alerts  *alerts.Service
	nowFn   func() time.Time
}

// New creates a policy gateway over the given storage and ledger.
func New(storage service.Storage, ledger service.Ledger, alertService *alerts.Service) *Gateway {
	return &Gateway{
		storage: storage,
		ledger:  ledger,
		alerts:  alertService,
		nowFn:   time.Now,
	}
}

// SetNowFunc overrides the gateway's clock. Used by tests.
func (g *Gateway) SetNowFunc(nowFn func() time.Time) {
	g.nowFn = nowFn
}

// Submit runs a request through the full policy sequence: cooling, then
// limits, then SCA, then the atomic ledger post. The order is deterministic
// so rejections are stable for a given input, and every check must complete
// successfully for the request to proceed; a check that cannot be completed
// rejects the request rather than failing open.
//
// Policy rejections and ledger failures come back inside the Decision;
// the error return is reserved for malformed input and storage faults.
func (g *Gateway) Submit(ctx context.Context, req *model.MoveRequest) (*Decision, error) {
	if err := req.Validate(); err != nil {
		return nil, common.NewValidationError("request", err.Error())
	}

	slog.Info("evaluating money-movement request",
		"request_id", req.ID,
		"customer_id", req.CustomerID,
		"amount", req.Amount)

	if decision, err := g.checkCooling(ctx, req); decision != nil || err != nil {
		return decision, err
	}

	if decision, err := g.checkLimits(ctx, req); decision != nil || err != nil {
		return decision, err
	}

	if decision, err := g.checkSCA(ctx, req); decision != nil || err != nil {
		return decision, err
	}

	return g.post(ctx, req)
}

// checkCooling rejects the request while its saved payee is still inside the
// rail's cooling window. Requests without a saved payee skip the check.
func (g *Gateway) checkCooling(ctx context.Context, req *model.MoveRequest) (*Decision, error) {
	if req.PayeeID == "" {
		return nil, nil
	}

	payee, err := g.storage.GetPayee(ctx, req.PayeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payee %s: %w", req.PayeeID, err)
	}

	cfg, err := g.storage.GetCoolingConfig(ctx, payee.Rail)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load cooling config: %w", err)
	}

	status := cooling.ComputeStatus(payee, cfg, g.nowFn())
	if status.State != cooling.StateActive {
		return nil, nil
	}

	hours := 0
	if status.HoursRemaining != nil {
		hours = *status.HoursRemaining
	}
	return &Decision{
		State: StateRejected,
		Rejection: &common.PolicyRejection{
			Kind:           common.RejectCoolingActive,
			HoursRemaining: hours,
			Message: fmt.Sprintf("payee is still within its %d-hour cooling window; %d hours remaining",
				cfg.Hours, hours),
		},
	}, nil
}

// checkLimits resolves the customer's limit tier from their KYC level and
// evaluates the amount against it with today's and this month's accumulated
// debit totals from the ledger read path.
func (g *Gateway) checkLimits(ctx context.Context, req *model.MoveRequest) (*Decision, error) {
	customer, err := g.storage.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer %s: %w", req.CustomerID, err)
	}

	tier, err := g.storage.GetLimitTier(ctx, customer.KYCLevel)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load limit tier for level %s: %w", customer.KYCLevel, err)
	}
	if tier == nil {
		// No tier configured for the level means no limit restriction,
		// the same fail-open treatment as a deactivated tier.
		return nil, nil
	}

	totals, err := g.storage.GetDebitTotals(ctx, req.CustomerID, g.nowFn())
	if err != nil {
		return nil, fmt.Errorf("failed to load debit totals: %w", err)
	}

	result := limits.Check(tier, req.Amount, totals.Daily, totals.Monthly)
	if result.Allowed {
		return nil, nil
	}

	var kind common.RejectionKind
	var message string
	switch result.Exceeded {
	case limits.ScopeSingle:
		kind = common.RejectLimitSingle
		message = fmt.Sprintf("amount %s exceeds the single-transaction limit of %s for your verification level",
			req.Amount, tier.Single)
	case limits.ScopeDaily:
		kind = common.RejectLimitDaily
		message = fmt.Sprintf("this payment would take today's spending past your daily limit of %s", tier.Daily)
	case limits.ScopeMonthly:
		kind = common.RejectLimitMonthly
		message = fmt.Sprintf("this payment would take this month's spending past your monthly limit of %s", tier.Monthly)
	default:
		return nil, fmt.Errorf("unexpected limit scope %q", result.Exceeded)
	}

	return &Decision{
		State:     StateRejected,
		Rejection: &common.PolicyRejection{Kind: kind, Message: message},
	}, nil
}

// checkSCA returns a step-up requirement when the amount meets or exceeds the
// configured threshold and the request carries no step-up proof. A missing
// threshold setting means step-up is not configured and the check passes.
func (g *Gateway) checkSCA(ctx context.Context, req *model.MoveRequest) (*Decision, error) {
	setting, err := g.storage.GetScaSetting(ctx, model.ScaSettingAmountThreshold)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load SCA threshold: %w", err)
	}

	threshold, err := setting.AmountValue()
	if err != nil {
		return nil, err
	}

	if req.Amount.LessThan(threshold) || req.SCAProof != "" {
		return nil, nil
	}

	return &Decision{
		State: StateSCARequired,
		Rejection: &common.PolicyRejection{
			Kind:    common.RejectSCARequired,
			Message: "strong customer authentication is required for this amount; complete step-up and resubmit",
		},
	}, nil
}

// post performs the atomic ledger movement and re-evaluates the customer's
// spending alerts against the updated activity. A ledger failure is terminal
// for this submission and is never retried here.
func (g *Gateway) post(ctx context.Context, req *model.MoveRequest) (*Decision, error) {
	metadata := map[string]string{"request_id": req.ID}
	if req.PayeeID != "" {
		metadata["payee_id"] = req.PayeeID
	}

	result, err := g.ledger.AtomicMove(ctx, req.AccountID, req.Amount.Neg(), req.Description, metadata)
	if err != nil {
		var ledgerErr *common.LedgerError
		if errors.As(err, &ledgerErr) {
			slog.Info("ledger rejected movement",
				"request_id", req.ID,
				"reason", ledgerErr.Reason)
			return &Decision{State: StateRejected, LedgerFailure: ledgerErr}, nil
		}
		return nil, fmt.Errorf("ledger post failed: %w", err)
	}

	if req.PayeeID != "" {
		if err := g.storage.MarkPayeeUsed(ctx, req.PayeeID, g.nowFn()); err != nil {
			return nil, fmt.Errorf("failed to record payee first use: %w", err)
		}
	}

	decision := &Decision{State: StateLedgerPosted, Result: result}

	triggered, err := g.alerts.EvaluateAndRecord(ctx, req.CustomerID)
	if err != nil {
		// The movement has posted; an alert evaluation fault must not
		// unwind it. Surface it in the log and return the decision.
		common.LogError(err, "post-movement alert evaluation failed",
			common.Fields{"request_id": req.ID})
	} else {
		decision.TriggeredAlerts = triggered
	}

	slog.Info("money movement posted",
		"request_id", req.ID,
		"transaction_id", result.TransactionID,
		"new_balance", result.NewBalance)
	return decision, nil
}
