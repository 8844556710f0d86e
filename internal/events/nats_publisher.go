package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/errors"
)

var tracer = telemetry.GetTracer("career-catalyst/events")

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url, name string, timeout time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}
	return nc, nil
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNATSPublisher(conn *nats.Conn, logger *zap.Logger) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}
}

func (p *natsPublisher) Publish(ctx context.Context, e Event) error {
	_, span := tracer.Start(ctx, "Publish")
	defer span.End()

	data, err := json.Marshal(e)
	if err != nil {
		telemetry.Fail(span, err)
		return errors.Internal("marshaling opportunity event", err)
	}

	subject := e.Type.Subject()
	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		telemetry.Fail(span, err)
		p.logger.Error("failed to publish opportunity event",
			zap.String("opportunity_id", e.OpportunityID),
			zap.String("type", string(e.Type)),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published opportunity event",
		zap.String("opportunity_id", e.OpportunityID),
		zap.String("subject", subject))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *natsPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("draining NATS connection", zap.Error(err))
		p.conn.Close()
	}
}
