// Package cache provides an in-process LRU cache with TTL expiry and a
// manager that sweeps expired entries in the background.
package cache

import (
	"context"
	"sync"
	"time"

	"gofinances/internal/log"
)

// Cache is a generic string-keyed cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner
	logger *log.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Manager{logger: logger.WithComponent(log.ComponentCache)}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// Sweep cleans all registered caches once and returns the number of removed
// entries.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	removed := 0
	for _, c := range caches {
		removed += c.CleanExpired()
	}
	return removed
}

// Start runs Sweep every interval until ctx is done or Stop is called.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Debug("Expired cache entries removed", "removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}
