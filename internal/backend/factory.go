package backend

import (
	"context"
	"fmt"

	"gofinances/internal/cache"
	"gofinances/internal/kv"
	"gofinances/internal/kv/memory"
	"gofinances/internal/log"
	"gofinances/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend builds the configured store and wraps it in the
// read-through cache when CacheSize is positive.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheSize > 0 {
		lru := cache.NewLRUCache[string](config.CacheSize, config.CacheTTL)
		result.Store = kv.NewCached(result.Store, lru)
		result.Cache = lru
		f.logger.InfoContext(ctx, "Enabled read-through cache",
			"size", config.CacheSize,
			"ttl", config.CacheTTL.String())
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Store:   store,
		Ready:   store.Ping,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store := memory.New()
	if config.MemorySeedFile != "" {
		seeded, err := memory.NewFromFile(config.MemorySeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory backend: %w", err)
		}
		store = seeded
	}
	f.logger.InfoContext(ctx, "Initialized memory backend",
		"seed_file", config.MemorySeedFile,
		"keys", store.Len())
	return &BackendResult{
		Store: store,
		Ready: func(context.Context) error { return nil },
	}, nil
}
