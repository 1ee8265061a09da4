package db

import (
	"context"

	"trizzaone/internal/types"
)

// EventRepository provides data access for the detected_events table.
type EventRepository struct {
	db DBTX
}

// NewEventRepository creates an EventRepository backed by the given database
// connection (pool or transaction).
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// Insert persists one dispatched event.
func (r *EventRepository) Insert(ctx context.Context, ev types.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO detected_events (id, kind, zone, metric, message, severity, detected_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID,
		ev.Kind,
		ev.Zone,
		ev.Metric,
		ev.Message,
		ev.Severity,
		ev.Timestamp,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert event", err)
	}
	return nil
}

// ListRecent returns the newest events, newest first, bounded by limit.
func (r *EventRepository) ListRecent(ctx context.Context, limit int) ([]types.Event, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, kind, zone, metric, message, severity, detected_at
		 FROM detected_events
		 ORDER BY detected_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list events", err)
	}
	defer rows.Close()

	var results []types.Event
	for rows.Next() {
		var ev types.Event
		if scanErr := rows.Scan(&ev.ID, &ev.Kind, &ev.Zone, &ev.Metric, &ev.Message, &ev.Severity, &ev.Timestamp); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan event row", scanErr)
		}
		results = append(results, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating event rows", err)
	}

	return results, nil
}
