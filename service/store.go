package service

import (
	"context"
	"errors"
	"fmt"

	"postsapi/app/config"
	"postsapi/app/models"
	"postsapi/app/repositories"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store holds the two collections the API serves and whatever connection
// backs them.
type Store struct {
	Backend  string
	Posts    repositories.Collection
	Comments repositories.Collection
	close    func(ctx context.Context) error
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore connects to the configured backend and checks it is reachable.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		return openBadgerStore(cfg.BadgerPath)
	case config.BackendRedis:
		return openRedisStore(ctx, cfg)
	case config.BackendMongo:
		return openMongoStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func openBadgerStore(path string) (*Store, error) {
	db, err := repositories.OpenBadger(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		Backend:  config.BackendBadger,
		Posts:    repositories.NewBadgerCollection(db, models.PostSchema),
		Comments: repositories.NewBadgerCollection(db, models.CommentSchema),
		close:    func(context.Context) error { return db.Close() },
	}, nil
}

func openRedisStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	return &Store{
		Backend:  config.BackendRedis,
		Posts:    repositories.NewRedisCollection(client, models.PostSchema),
		Comments: repositories.NewRedisCollection(client, models.CommentSchema),
		close:    func(context.Context) error { return client.Close() },
	}, nil
}

func openMongoStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to reach mongo: %w", err),
			client.Disconnect(context.Background()),
		)
	}
	db := client.Database(cfg.MongoDatabase)
	return &Store{
		Backend:  config.BackendMongo,
		Posts:    repositories.NewMongoCollection(db, models.PostSchema),
		Comments: repositories.NewMongoCollection(db, models.CommentSchema),
		close:    client.Disconnect,
	}, nil
}
