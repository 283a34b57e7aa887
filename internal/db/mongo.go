package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var Client *mongo.Client

// Connect dials MongoDB and verifies the connection with a primary ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("plp-bookstore"))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	zap.S().Infof("Connected to MongoDB at %s", redact(uri))
	Client = client
	return client, nil
}

func Disconnect(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		zap.S().Warnf("Disconnect from MongoDB failed: %v", err)
	}
	Client = nil
}

func GetCollection(dbName, collName string) *mongo.Collection {
	return Client.Database(dbName).Collection(collName)
}

// Ping is used by the health endpoint.
func Ping(ctx context.Context) error {
	if Client == nil {
		return fmt.Errorf("mongo client not connected")
	}
	return Client.Ping(ctx, readpref.Primary())
}
