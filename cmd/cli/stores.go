package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	api "reliance-backend/cmd/api"
	authRepo "reliance-backend/internal/auth/repository"
	taskRepo "reliance-backend/internal/task/repository"
	zoneRepo "reliance-backend/internal/valuezone/repository"
	"reliance-backend/pkg/config"
	"reliance-backend/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// stores groups the repositories for the configured driver
type stores struct {
	users  authRepo.UserRepository
	tasks  taskRepo.TaskRepository
	zones  zoneRepo.ValueZoneRepository
	checks map[string]api.ReadinessCheck
	close  func()
}

func openStores(ctx context.Context, cfg *config.Config, migrate bool) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.MigrateUp(db, database.DefaultMigrationConfig(cfg.MigrationsPath)); err != nil {
				_ = database.ClosePostgres(db)
				return nil, err
			}
		}
		return &stores{
			users: authRepo.NewUserRepository(db),
			tasks: taskRepo.NewGormTaskRepository(db),
			zones: zoneRepo.NewGormValueZoneRepository(db),
			checks: map[string]api.ReadinessCheck{
				"database": func(ctx context.Context) error { return database.PingPostgres(ctx, db) },
			},
			close: func() {
				if err := database.ClosePostgres(db); err != nil {
					log.Printf("[Serve] Failed to close postgres: %v", err)
				}
			},
		}, nil

	case config.StoreMongo:
		client, db, err := database.NewMongoConnection(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return &stores{
			users: authRepo.NewMongoUserRepository(db),
			tasks: taskRepo.NewMongoTaskRepository(db),
			zones: zoneRepo.NewMongoValueZoneRepository(db),
			checks: map[string]api.ReadinessCheck{
				"database": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Printf("[Serve] Failed to disconnect mongo: %v", err)
				}
			},
		}, nil

	case config.StoreMemory:
		log.Println("[Serve] Using in-memory store, data is lost on restart")
		return &stores{
			users:  authRepo.NewMemoryUserRepository(),
			tasks:  taskRepo.NewMemoryTaskRepository(),
			zones:  zoneRepo.NewMemoryValueZoneRepository(),
			checks: map[string]api.ReadinessCheck{},
			close:  func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s or %s)",
			cfg.StoreDriver, config.StorePostgres, config.StoreMongo, config.StoreMemory)
	}
}

// openRedis returns nil when REDIS_ADDR is unset
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Printf("[Serve] Connected to Redis at %s", cfg.RedisAddr)
	return client, nil
}
