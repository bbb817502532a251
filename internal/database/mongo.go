package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dias221467/MemoMe/internal/config"
	"github.com/Dias221467/MemoMe/internal/store"
)

// ConnectDB connects to MongoDB and verifies the connection with a ping.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logrus.WithField("db", cfg.DBName).Info("Connected to MongoDB")
	return client.Database(cfg.DBName), nil
}

// OpenStore returns the record store selected by STORAGE_BACKEND.
func OpenStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		logrus.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	case "mongo":
		db, err := ConnectDB(cfg)
		if err != nil {
			return nil, err
		}
		s := store.NewMongoStore(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
