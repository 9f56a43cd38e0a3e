package database

import (
	"context"
	"log"
	"time"

	"go-gamifier/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

type MongodbDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, cfg *config.Config) (*MongodbDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &MongodbDB{Client: client, DB: client.Database(cfg.DBName)}, nil
}

// NewDatabase creates a new MongoDB database connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	mongodb, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return mongodb.Client.Disconnect(ctx)
		},
	})

	return mongodb, nil
}
