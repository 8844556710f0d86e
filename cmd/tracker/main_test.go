package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/michaelprosario/career-catalyst/internal/activity"
	"github.com/michaelprosario/career-catalyst/internal/api"
	"github.com/michaelprosario/career-catalyst/internal/config"
	"github.com/michaelprosario/career-catalyst/internal/events"
	"github.com/michaelprosario/career-catalyst/internal/jobsearch"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:      "career-catalyst",
		Version:          "test",
		Development:      true,
		HTTPAddr:         "127.0.0.1:0",
		ShutdownTimeout:  5 * time.Second,
		StorageBackend:   config.BackendMemory,
		ProfileBackend:   config.BackendMemory,
		GoogleAIModel:    "gemini-1.5-flash",
		JobSearchTimeout: time.Second,
	}
}

func TestModuleStartsWithMemoryBackends(t *testing.T) {
	var (
		srv      *api.Server
		pub      events.Publisher
		journal  activity.Journal
		searcher jobsearch.Searcher
	)
	app := fxtest.New(t,
		fx.Supply(testConfig()),
		module(),
		fx.Replace(zaptest.NewLogger(t)),
		fx.Populate(&srv, &pub, &journal, &searcher),
	)
	app.RequireStart()
	defer app.RequireStop()

	if _, ok := pub.(events.NopPublisher); !ok {
		t.Fatalf("publisher = %T, want NopPublisher without NATS or ClickHouse", pub)
	}
	if journal != nil || searcher != nil {
		t.Fatalf("optional collaborators should be disabled: journal=%v searcher=%v", journal, searcher)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestSearcherFollowsConfig(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)
	if newSearcher(cfg, logger) != nil {
		t.Fatalf("searcher without URL should be nil")
	}
	cfg.JobSearchURL = "http://jobs.invalid"
	if newSearcher(cfg, logger) == nil {
		t.Fatalf("searcher with URL should be set")
	}
}
