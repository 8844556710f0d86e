package activity

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap/zaptest"

	"github.com/michaelprosario/career-catalyst/common/database"
	"github.com/michaelprosario/career-catalyst/common/database/schema"
	"github.com/michaelprosario/career-catalyst/common/database/schema/migrations"
	ierrors "github.com/michaelprosario/career-catalyst/internal/errors"
	"github.com/michaelprosario/career-catalyst/internal/events"
)

type fakeConn struct {
	query string
	args  []any
	err   error
}

func (f *fakeConn) Exec(_ context.Context, query string, args ...any) error {
	f.query, f.args = query, args
	return f.err
}

func (f *fakeConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, f.err
}

func sampleEvent() events.Event {
	return events.Event{
		ID:                "6f1c9c1e-4b7a-4a53-9d36-0d3c4f0f2b11",
		Type:              events.TypeApplied,
		OpportunityID:     "o1",
		UserID:            "u1",
		ApplicationStatus: "APPLIED",
		Title:             "Engineer",
		Company:           "Acme",
		OccurredAt:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordBindsEveryColumn(t *testing.T) {
	fc := &fakeConn{}
	s := &ClickHouseStore{logger: zaptest.NewLogger(t), db: fc}

	if err := s.Record(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(fc.args) != 9 {
		t.Fatalf("bound %d args, want 9", len(fc.args))
	}
	if fc.args[3] != "applied" || fc.args[1] != "o1" {
		t.Fatalf("unexpected args: %v", fc.args)
	}
}

func TestRecordWrapsFailures(t *testing.T) {
	s := &ClickHouseStore{logger: zaptest.NewLogger(t), db: &fakeConn{err: errors.New("connection refused")}}
	err := s.Record(context.Background(), sampleEvent())
	if ierrors.TypeOf(err) != ierrors.ErrTypeInternal {
		t.Fatalf("Record() error = %v, want INTERNAL", err)
	}
	if _, err := s.History(context.Background(), "o1"); err == nil {
		t.Fatalf("History() expected error")
	}
}

func TestDirectPublisherRecords(t *testing.T) {
	fc := &fakeConn{}
	p := NewDirectPublisher(&ClickHouseStore{logger: zaptest.NewLogger(t), db: fc})
	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if fc.query == "" {
		t.Fatalf("event was not written")
	}
}

func TestClickHouseRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_CLICKHOUSE_DSN")
	if dsn == "" {
		t.Skip("TEST_CLICKHOUSE_DSN not set")
	}
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	db, err := database.New(ctx, database.Options{DSN: dsn, Username: "default", Database: "default"}, logger)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	if _, err := schema.NewMigrator(db.Conn(), logger).Migrate(ctx, migrations.All()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	s := NewClickHouseStore(logger, db.Conn())
	e := sampleEvent()
	e.OpportunityID = "roundtrip-" + time.Now().Format("150405.000000")
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	got, err := s.History(ctx, e.OpportunityID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 1 || got[0].Type != events.TypeApplied || !got[0].OccurredAt.Equal(e.OccurredAt) {
		t.Fatalf("History() = %+v", got)
	}
}
