// internal/domain/orderstore/mongo_repository.go
package orderstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository stores records as documents in the orders collection
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a repository over db
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("orders")}
}

// CreateIndexes creates the unique and lookup indexes
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "client_order_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "payment_info.status", Value: 1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Create(ctx context.Context, rec *Record) error {
	if _, err := m.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *MongoRepository) FindByNumber(ctx context.Context, number string) (*Record, error) {
	return m.findOne(ctx, bson.M{"order_number": number})
}

func (m *MongoRepository) FindByIdempotencyKey(ctx context.Context, key string) (*Record, error) {
	return m.findOne(ctx, bson.M{"idempotency_key": key})
}

func (m *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Record, error) {
	var rec Record
	if err := m.collection.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &rec, nil
}

func (m *MongoRepository) List(ctx context.Context, filter ListFilter) ([]Record, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := m.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.offset())).
		SetLimit(int64(filter.Limit))

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}
	return records, total, nil
}

func (m *MongoRepository) UpdateStatus(ctx context.Context, number string, from Status, change StatusChange) error {
	filter := bson.M{"order_number": number, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":          change.Status,
			"tracking_number": change.TrackingNumber,
			"cancel_reason":   change.CancelReason,
			"delivered_at":    change.DeliveredAt,
			"cancelled_at":    change.CancelledAt,
			"updated_at":      change.UpdatedAt,
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrStatusConflict
	}
	return nil
}
