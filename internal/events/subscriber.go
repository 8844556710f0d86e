package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/telemetry"
)

const QueueGroup = "activity-journal"

// Recorder persists events received from the bus.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type Handler struct {
	logger   *zap.Logger
	nc       *nats.Conn
	recorder Recorder
	sub      *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, recorder Recorder) *Handler {
	return &Handler{
		logger:   logger,
		nc:       nc,
		recorder: recorder,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(SubjectAll, QueueGroup, h.handleEvent)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", SubjectAll, err)
	}

	h.sub = sub
	h.logger.Info("registered NATS subscriptions", zap.String("subject", SubjectAll))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Unsubscribe()
		},
	})

	return nil
}

func (h *Handler) handleEvent(msg *nats.Msg) {
	ctx, span := tracer.Start(context.Background(), "handleEvent")
	defer span.End()
	span.SetAttributes(telemetry.String("nats.subject", msg.Subject))

	var e Event
	if err := json.Unmarshal(msg.Data, &e); err != nil {
		telemetry.Fail(span, err)
		h.logger.Error("failed to decode opportunity event",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
		return
	}

	if err := h.recorder.Record(ctx, e); err != nil {
		telemetry.Fail(span, err)
		h.logger.Error("failed to record opportunity event",
			zap.Error(err),
			zap.String("subject", msg.Subject),
			zap.String("opportunity_id", e.OpportunityID),
		)
		return
	}

	h.logger.Debug("recorded opportunity event",
		zap.String("subject", msg.Subject),
		zap.String("opportunity_id", e.OpportunityID),
	)
}
