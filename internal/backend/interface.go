package backend

import (
	"context"

	"gofinances/internal/cache"
	"gofinances/internal/kv"
)

// CleanupFunc releases the resources held by a backend
type CleanupFunc func() error

// BackendResult contains the store and its lifecycle hooks
type BackendResult struct {
	Store kv.Store
	// Cache is the LRU in front of Store, nil when caching is disabled.
	Cache   cache.Cleaner
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates key-value backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
