package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/common/database"
	"github.com/michaelprosario/career-catalyst/common/database/schema"
	"github.com/michaelprosario/career-catalyst/common/database/schema/migrations"
	"github.com/michaelprosario/career-catalyst/internal/config"
	pgrepo "github.com/michaelprosario/career-catalyst/internal/repository/postgres"
)

func main() {
	rollback := flag.Int("rollback", 0, "roll back the ClickHouse migration with this version")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	if cfg.StorageBackend == config.BackendPostgres {
		db, err := database.NewPostgres(database.PostgresOptions{DSN: cfg.PostgresDSN}, logger)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if err := pgrepo.New(db, logger).Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate postgres", zap.Error(err))
		}
		if err := database.ClosePostgres(db); err != nil {
			logger.Warn("failed to close postgres", zap.Error(err))
		}
		logger.Info("postgres schema is up to date")
	}

	if cfg.ClickHouseDSN == "" {
		logger.Info("no CLICKHOUSE_DSN, skipping activity journal migrations")
		return
	}

	db, err := database.New(ctx, database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect to clickhouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if *rollback != 0 {
		for _, m := range migrations.All() {
			if m.Version != *rollback {
				continue
			}
			if err := migrator.RollbackMigration(ctx, m); err != nil {
				logger.Fatal("failed to roll back migration", zap.Int("version", m.Version), zap.Error(err))
			}
			logger.Info("rolled back migration", zap.Int("version", m.Version))
			return
		}
		logger.Fatal("unknown migration version", zap.Int("version", *rollback))
	}

	applied, err := migrator.Migrate(ctx, migrations.All())
	if err != nil {
		logger.Fatal("failed to apply migrations", zap.Int("applied", applied), zap.Error(err))
	}
	logger.Info("all migrations completed", zap.Int("applied", applied))
}
