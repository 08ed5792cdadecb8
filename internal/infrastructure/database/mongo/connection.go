// internal/infrastructure/database/mongo/connection.go
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB client and the store database
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewConnection connects to MongoDB and verifies the connection
func NewConnection(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	c := &Client{client: client, database: client.Database(cfg.Mongo.Database)}
	if err := c.Health(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.WithField("database", cfg.Mongo.Database).Info("MongoDB connection established")
	return c, nil
}

// Database returns the store database
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Health pings the primary
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
