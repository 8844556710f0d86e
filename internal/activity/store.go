// Package activity keeps an append-only journal of opportunity lifecycle
// events in ClickHouse.
package activity

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/events"
)

var tracer = telemetry.GetTracer("career-catalyst/activity")

// Journal is what the HTTP layer and the event handler need.
type Journal interface {
	Record(ctx context.Context, e events.Event) error
	History(ctx context.Context, opportunityID string) ([]events.Event, error)
}

type conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
}

type ClickHouseStore struct {
	logger *zap.Logger
	db     conn
}

func NewClickHouseStore(logger *zap.Logger, db driver.Conn) *ClickHouseStore {
	return &ClickHouseStore{logger: logger, db: db}
}

var _ Journal = (*ClickHouseStore)(nil)

func (s *ClickHouseStore) Record(ctx context.Context, e events.Event) error {
	ctx, span := tracer.Start(ctx, "Record")
	defer span.End()
	span.SetAttributes(
		telemetry.String("opportunity.id", e.OpportunityID),
		telemetry.String("event.type", string(e.Type)),
	)

	query := `
		INSERT INTO opportunity_events (
			event_id, opportunity_id, user_id, event_type, application_status,
			title, company, detail, occurred_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	if err := s.db.Exec(ctx, query,
		e.ID,
		e.OpportunityID,
		e.UserID,
		string(e.Type),
		e.ApplicationStatus,
		e.Title,
		e.Company,
		e.Detail,
		e.OccurredAt,
	); err != nil {
		telemetry.Fail(span, err)
		return errors.Internal("insert opportunity event", err)
	}

	s.logger.Debug("recorded opportunity event",
		zap.String("opportunity_id", e.OpportunityID),
		zap.String("type", string(e.Type)))
	return nil
}

// History returns the events of one opportunity, oldest first.
func (s *ClickHouseStore) History(ctx context.Context, opportunityID string) ([]events.Event, error) {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()
	span.SetAttributes(telemetry.String("opportunity.id", opportunityID))

	rows, err := s.db.Query(ctx, `
		SELECT toString(event_id), opportunity_id, user_id, event_type, application_status,
			title, company, detail, occurred_at
		FROM opportunity_events
		WHERE opportunity_id = ?
		ORDER BY occurred_at, event_id
	`, opportunityID)
	if err != nil {
		telemetry.Fail(span, err)
		return nil, errors.Internal("query opportunity events", err)
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		var (
			e         events.Event
			eventType string
		)
		if err := rows.Scan(&e.ID, &e.OpportunityID, &e.UserID, &eventType, &e.ApplicationStatus,
			&e.Title, &e.Company, &e.Detail, &e.OccurredAt); err != nil {
			return nil, errors.Internal("scan opportunity event", err)
		}
		e.Type = events.Type(eventType)
		e.OccurredAt = e.OccurredAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(fmt.Sprintf("read events of %s", opportunityID), err)
	}
	return out, nil
}
