package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var ErrNotConnected = errors.New("mongodb is not connected")

type MongoOptions struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// Mongo is a connection pool owned by the composition root. Callers fetch a
// collection handle per operation so a pool that is disconnected reports
// ErrNotConnected instead of reusing a dead client.
type Mongo struct {
	opts   MongoOptions
	logger *zap.Logger

	mu     sync.RWMutex
	client *mongo.Client
}

func NewMongo(opts MongoOptions, logger *zap.Logger) *Mongo {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	return &Mongo{opts: opts, logger: logger}
}

// Connect dials the server and verifies it with a ping. Calling Connect on a
// connected pool is a no-op.
func (m *Mongo) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		return nil
	}

	clientOpts := options.Client().
		ApplyURI(m.opts.URI).
		SetConnectTimeout(m.opts.ConnectTimeout).
		SetServerSelectionTimeout(m.opts.ConnectTimeout)
	if m.opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(m.opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to create mongodb client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m.client = client
	m.logger.Info("connected to mongodb", zap.String("database", m.opts.Database))
	return nil
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	m.logger.Info("closing mongodb connection")
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}

func (m *Mongo) Collection(name string) (*mongo.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrNotConnected
	}
	return m.client.Database(m.opts.Database).Collection(name), nil
}
