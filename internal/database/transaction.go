package database

import (
	"context"

	"go-gamifier/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn as one unit of work. Repositories called with the ctx passed to fn
// join the unit; any error returned by fn discards every write made inside it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MongoTransactor struct {
	Client  *mongo.Client
	Enabled bool
}

func NewTransactor(mongodb *MongodbDB, cfg *config.Config) Transactor {
	return &MongoTransactor{Client: mongodb.Client, Enabled: cfg.MongoTransactions}
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.Enabled {
		return fn(ctx)
	}

	session, err := t.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
