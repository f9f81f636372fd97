package datastores

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrConfiguration  = errors.New("mongo: missing configuration")
	ErrConnection     = errors.New("mongo: connection failed")
	ErrNotInitialized = errors.New("mongo: database not initialized, call Connect first")
)

// MongoOptions holds the connection parameters. The env tags are read by
// [MongoOptions.WithEnv].
type MongoOptions struct {
	MongodbURI string `doc:"MongoDB connection string"  env:"MONGODB_URI"`
	DBName     string `doc:"MongoDB database name"      env:"DB_NAME"`
}

// WithEnv returns o with its empty fields taken from MONGODB_URI and DB_NAME.
func (o MongoOptions) WithEnv() (MongoOptions, error) {
	fromEnv, err := env.ParseAs[MongoOptions]()
	if err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return MongoOptions{
		MongodbURI: cmp.Or(o.MongodbURI, fromEnv.MongodbURI),
		DBName:     cmp.Or(o.DBName, fromEnv.DBName),
	}, nil
}

// Mongo owns a single [mongo.Client] shared by every operation.
// The zero value is ready to use.
type Mongo struct {
	Timeout time.Duration // server selection and connect timeout, defaults to 10s

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes the connection and verifies it with a ping.
// Once connected it returns the existing database without reconnecting.
func (m *Mongo) Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: uri is empty", ErrConfiguration)
	}
	if database == "" {
		return nil, fmt.Errorf("%w: database name is empty", ErrConfiguration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return m.db, nil
	}

	timeout := m.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second //nolint: mnd // same as the driver's default server selection
	}
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err = client.Database("admin").RunCommand(pingCtx, bson.D{{Key: "ping", Value: 1}}).Err()
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	m.client, m.db = client, client.Database(database)
	return m.db, nil
}

// Database returns the connected database or [ErrNotInitialized].
func (m *Mongo) Database() (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, ErrNotInitialized
	}
	return m.db, nil
}

// Ping checks that the server is still reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return ErrNotInitialized
	}
	return client.Ping(ctx, nil)
}

// Close disconnects the client. Closing a never connected Mongo is a no-op.
func (m *Mongo) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client, m.db = nil, nil
	return err
}
