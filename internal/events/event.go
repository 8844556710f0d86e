// Package events carries user opportunity lifecycle events over NATS.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/michaelprosario/career-catalyst/internal/models"
)

const (
	SubjectPrefix = "opportunity.events"
	// SubjectAll matches every lifecycle subject.
	SubjectAll = SubjectPrefix + ".>"
)

type Type string

const (
	TypeSaved         Type = "saved"
	TypeUpdated       Type = "updated"
	TypeDeleted       Type = "deleted"
	TypeApplied       Type = "applied"
	TypeStatusChanged Type = "status_changed"
	TypeNotesAdded    Type = "notes_added"
)

func (t Type) Subject() string {
	return SubjectPrefix + "." + string(t)
}

type Event struct {
	ID                string    `json:"event_id"`
	Type              Type      `json:"type"`
	OpportunityID     string    `json:"opportunity_id"`
	UserID            string    `json:"user_id"`
	ApplicationStatus string    `json:"application_status,omitempty"`
	Title             string    `json:"title,omitempty"`
	Company           string    `json:"company,omitempty"`
	Detail            string    `json:"detail,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewEvent snapshots o for an event of type t.
func NewEvent(t Type, o *models.UserOpportunity, now time.Time) Event {
	return Event{
		ID:                uuid.NewString(),
		Type:              t,
		OpportunityID:     o.ID,
		UserID:            o.UserID,
		ApplicationStatus: string(o.ApplicationStatus),
		Title:             o.Title,
		Company:           o.Company,
		OccurredAt:        now.UTC(),
	}
}

func (e Event) WithDetail(detail string) Event {
	e.Detail = detail
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() {}
