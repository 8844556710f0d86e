package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/blobstore"
	blobmemory "github.com/michaelprosario/career-catalyst/common/blobstore/memory"
	blobredis "github.com/michaelprosario/career-catalyst/common/blobstore/redis"
	"github.com/michaelprosario/career-catalyst/common/database"
	"github.com/michaelprosario/career-catalyst/common/telemetry"
	"github.com/michaelprosario/career-catalyst/internal/activity"
	"github.com/michaelprosario/career-catalyst/internal/api"
	"github.com/michaelprosario/career-catalyst/internal/config"
	"github.com/michaelprosario/career-catalyst/internal/coverletter"
	"github.com/michaelprosario/career-catalyst/internal/events"
	"github.com/michaelprosario/career-catalyst/internal/jobsearch"
	"github.com/michaelprosario/career-catalyst/internal/profile"
	"github.com/michaelprosario/career-catalyst/internal/repository"
	"github.com/michaelprosario/career-catalyst/internal/repository/memory"
	mongorepo "github.com/michaelprosario/career-catalyst/internal/repository/mongo"
	pgrepo "github.com/michaelprosario/career-catalyst/internal/repository/postgres"
	"github.com/michaelprosario/career-catalyst/internal/service"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development || cfg.LogLevel == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func startTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	shutdown, err := telemetry.InitTracer(context.Background(), cfg.ServiceName, cfg.Version, cfg.OTELCollectorURL, logger)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			shutdown(ctx)
			return nil
		},
	})
	return nil
}

func newRepository(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repository.Repository, error) {
	switch cfg.StorageBackend {
	case config.BackendMongo:
		pool := database.NewMongo(database.MongoOptions{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			ConnectTimeout: cfg.MongoTimeout,
		}, logger)
		repo := mongorepo.New(pool, logger)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := pool.Connect(ctx); err != nil {
					return err
				}
				return repo.EnsureIndexes(ctx)
			},
			OnStop: pool.Disconnect,
		})
		return repo, nil

	case config.BackendPostgres:
		db, err := database.NewPostgres(database.PostgresOptions{
			DSN:          cfg.PostgresDSN,
			MaxOpenConns: cfg.PostgresMaxOpenConns,
			MaxIdleConns: cfg.PostgresMaxIdleConns,
		}, logger)
		if err != nil {
			return nil, err
		}
		repo := pgrepo.New(db, logger)
		lc.Append(fx.Hook{
			OnStart: repo.Migrate,
			OnStop: func(context.Context) error {
				return database.ClosePostgres(db)
			},
		})
		return repo, nil
	}

	logger.Warn("using in-memory storage, records are lost on restart")
	return memory.New(), nil
}

// newJournal returns nil when ClickHouse is not configured.
func newJournal(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (activity.Journal, error) {
	if cfg.ClickHouseDSN == "" {
		logger.Info("activity journal disabled, no CLICKHOUSE_DSN")
		return nil, nil
	}
	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return activity.NewClickHouseStore(logger, db.Conn()), nil
}

// newPublisher picks NATS when configured, writing straight to the journal
// otherwise. With NATS the journal is fed by a queue subscription.
func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, journal activity.Journal) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		if journal != nil {
			return activity.NewDirectPublisher(journal), nil
		}
		return events.NopPublisher{}, nil
	}

	nc, err := events.Connect(cfg.NATSURL, cfg.ServiceName, cfg.NATSConnTimeout)
	if err != nil {
		return nil, err
	}
	pub := events.NewNATSPublisher(nc, logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pub.Close()
			return nil
		},
	})

	if journal != nil {
		if err := events.NewHandler(logger, nc, journal).RegisterSubscriptions(lc); err != nil {
			return nil, err
		}
	}
	return pub, nil
}

func newOpportunityService(repo repository.Repository, pub events.Publisher, logger *zap.Logger) *service.OpportunityService {
	return service.NewOpportunityService(repo, pub, logger)
}

func newProfileStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) *profile.Store {
	var blobs blobstore.Store = blobmemory.New()
	if cfg.ProfileBackend == config.BackendRedis {
		rs := blobredis.New(blobstore.Options{
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStart: rs.Ping,
			OnStop: func(context.Context) error {
				return rs.Close()
			},
		})
		blobs = rs
	}
	return profile.NewStore(blobs, logger)
}

func newCoverLetters(cfg *config.Config, logger *zap.Logger, opps *service.OpportunityService, profiles *profile.Store) (*coverletter.Service, error) {
	var writer coverletter.Writer
	if cfg.GoogleAIAPIKey == "" {
		logger.Info("cover letter generation disabled, no GOOGLE_AI_API_KEY")
	} else {
		w, err := coverletter.NewGeminiWriter(context.Background(), cfg.GoogleAIAPIKey, cfg.GoogleAIModel, logger)
		if err != nil {
			return nil, err
		}
		writer = w
	}
	return coverletter.NewService(opps, profiles, writer, logger), nil
}

// newSearcher returns nil when no provider is configured.
func newSearcher(cfg *config.Config, logger *zap.Logger) jobsearch.Searcher {
	if cfg.JobSearchURL == "" {
		logger.Info("job search disabled, no JOB_SEARCH_URL")
		return nil
	}
	return jobsearch.NewClient(jobsearch.ClientOptions{
		BaseURL: cfg.JobSearchURL,
		APIKey:  cfg.JobSearchAPIKey,
		Timeout: cfg.JobSearchTimeout,
	}, logger)
}

func newServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	logger *zap.Logger,
	opps *service.OpportunityService,
	profiles *profile.Store,
	letters *coverletter.Service,
	searcher jobsearch.Searcher,
	journal activity.Journal,
) *api.Server {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(api.Options{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		ServiceName:    cfg.ServiceName,
		Version:        cfg.Version,
	}, api.Deps{
		Opportunities: opps,
		Profiles:      profiles,
		CoverLetters:  letters,
		Searcher:      searcher,
		Journal:       journal,
	}, logger)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start()
		},
		OnStop: srv.Stop,
	})
	return srv
}

// module is the application graph minus configuration.
func module() fx.Option {
	return fx.Options(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			newLogger,
			newRepository,
			newJournal,
			newPublisher,
			newOpportunityService,
			newProfileStore,
			newCoverLetters,
			newSearcher,
			newServer,
		),
		fx.Invoke(
			startTracing,
			func(*api.Server) {},
		),
	)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.StopTimeout(cfg.ShutdownTimeout),
		module(),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
