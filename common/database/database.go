// Package database opens the connections the services share: ClickHouse for
// the activity journal, MongoDB or PostgreSQL for opportunity records.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

const defaultDialTimeout = 30 * time.Second

// Options configure the ClickHouse connection. DSN is either a bare
// "host:port" or a clickhouse:// URL; non-empty credential fields win over
// whatever the URL carries.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Username        string
	Password        string
	Database        string
}

type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func clickhouseOptions(opts Options) (*clickhouse.Options, error) {
	var co *clickhouse.Options
	if strings.Contains(opts.DSN, "://") {
		parsed, err := clickhouse.ParseDSN(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse clickhouse dsn: %w", err)
		}
		co = parsed
	} else {
		co = &clickhouse.Options{Addr: []string{strings.Split(opts.DSN, "?")[0]}}
	}

	co.Protocol = clickhouse.Native
	if co.Settings == nil {
		co.Settings = clickhouse.Settings{}
	}
	if _, ok := co.Settings["max_execution_time"]; !ok {
		co.Settings["max_execution_time"] = 60
	}
	if opts.Database != "" {
		co.Auth.Database = opts.Database
	}
	if opts.Username != "" {
		co.Auth.Username = opts.Username
	}
	if opts.Password != "" {
		co.Auth.Password = opts.Password
	}
	if co.DialTimeout == 0 {
		co.DialTimeout = defaultDialTimeout
	}
	if opts.MaxOpenConns > 0 {
		co.MaxOpenConns = opts.MaxOpenConns
	}
	if opts.MaxIdleConns > 0 {
		co.MaxIdleConns = opts.MaxIdleConns
	}
	if opts.ConnMaxLifetime > 0 {
		co.ConnMaxLifetime = opts.ConnMaxLifetime
	}
	return co, nil
}

// New opens the connection and pings it before returning.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	co, err := clickhouseOptions(opts)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(co)
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	logger.Info("connected to clickhouse",
		zap.Strings("addr", co.Addr),
		zap.String("database", co.Auth.Database),
	)
	return &Database{conn: conn, logger: logger}, nil
}

func (db *Database) Close() error {
	db.logger.Info("closing clickhouse connection")
	return db.conn.Close()
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}
