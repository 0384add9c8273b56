package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/finveil/riskgate/internal/model"
)

// Record appends a standalone override event to the audit trail. Operations
// that change policy state use the event-carrying save methods instead, which
// write the event inside the same transaction as the change.
func (s *SQLiteStorage) Record(ctx context.Context, event *model.OverrideEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid override event: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertOverrideEventTx(ctx, tx, event)
	})
}

// ListOverrideEvents returns the newest audit events, up to limit.
func (s *SQLiteStorage) ListOverrideEvents(ctx context.Context, limit int) ([]model.OverrideEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, actor_id, actor_role, action, target_type, target_id,
			before_value, after_value, justification, created_at
		FROM override_events
		ORDER BY created_at DESC, id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query override events: %w", err)
	}
	defer rows.Close()

	var events []model.OverrideEvent
	for rows.Next() {
		var event model.OverrideEvent
		var before, after, justification sql.NullString
		if err := rows.Scan(&event.ID, &event.ActorID, &event.ActorRole, &event.Action,
			&event.TargetType, &event.TargetID, &before, &after, &justification,
			&event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override event: %w", err)
		}
		event.Before = before.String
		event.After = after.String
		event.Justification = justification.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating override events: %w", err)
	}

	return events, nil
}

// insertOverrideEventTx appends an audit event inside an open transaction.
// There is deliberately no update or delete path for override_events.
func insertOverrideEventTx(ctx context.Context, tx *sql.Tx, event *model.OverrideEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO override_events (id, actor_id, actor_role, action, target_type, target_id,
			before_value, after_value, justification, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.ActorID, event.ActorRole, event.Action,
		event.TargetType, event.TargetID,
		event.Before, event.After, event.Justification, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record override event: %w", err)
	}
	return nil
}
