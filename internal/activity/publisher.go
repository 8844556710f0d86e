package activity

import (
	"context"

	"github.com/michaelprosario/career-catalyst/internal/events"
)

// DirectPublisher writes events straight into the journal. It stands in for
// the broker when NATS is not configured.
type DirectPublisher struct {
	journal Journal
}

func NewDirectPublisher(journal Journal) *DirectPublisher {
	return &DirectPublisher{journal: journal}
}

func (p *DirectPublisher) Publish(ctx context.Context, e events.Event) error {
	return p.journal.Record(ctx, e)
}

func (p *DirectPublisher) Close() {}
