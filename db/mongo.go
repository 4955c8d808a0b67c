package db

import (
	"context"
	"fmt"
	"time"

	"ip-lookup/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectToMongo initializes and pings a MongoDB client
func ConnectToMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.L().Info("mongo_connected")
	return client, nil
}

// EnsureMongoIndexes creates the unique address index and the history index.
// The unique index is what rejects a concurrent duplicate insert.
func EnsureMongoIndexes(ctx context.Context, client *mongo.Client, database, collection string) error {
	_, err := client.Database(database).Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ip_address", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ip_address_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create MongoDB indexes: %w", err)
	}

	logger.L().Info("schema_initialized", zap.String("backend", "mongodb"))
	return nil
}
