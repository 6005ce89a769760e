package preferences

import (
	"context"
	"fmt"
	"time"

	"github.com/davidbz/pressroom/internal/cache/redis"
	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

// Backend names accepted in PREFERENCES_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures the preference backend.
type Config struct {
	Backend    string `env:"PREFERENCES_BACKEND"     envDefault:"memory"`
	SQLitePath string `env:"PREFERENCES_SQLITE_PATH" envDefault:"./data/preferences.db"`
}

// Store is a preference backend that holds resources.
type Store interface {
	domain.PreferenceStore
	Close() error
}

// New opens the configured backend.
func New(ctx context.Context, cfg Config, redisCfg redis.Config) (Store, error) {
	logger := observability.FromContext(ctx).With(observability.String("backend", cfg.Backend))

	switch cfg.Backend {
	case "", BackendMemory:
		logger.Info("using in-memory preference store")
		return NewMemoryStore(), nil
	case BackendSQLite:
		logger.Info("using sqlite preference store", observability.String("path", cfg.SQLitePath))
		return NewSQLiteStore(cfg.SQLitePath)
	case BackendRedis:
		client, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis preference store", observability.String("addr", redisCfg.Addr))
		return redis.NewPreferenceStore(client, time.Duration(redisCfg.TTL)*time.Second, redisCfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown preferences backend %q", cfg.Backend)
	}
}
