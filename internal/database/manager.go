package database

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Manager lazily opens one pool and shares it with every caller.
type Manager struct {
	opts   Options
	logger *logrus.Logger
	open   func(context.Context, Options) (*Pool, error)

	mu   sync.Mutex
	pool atomic.Pointer[Pool]
}

func NewManager(opts Options, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		opts:   opts,
		logger: logger,
		open:   Open,
	}
}

// Acquire returns the shared pool, opening it on first use. Concurrent callers
// wait for the first attempt; a failed attempt is not cached.
func (m *Manager) Acquire(ctx context.Context) (*Pool, error) {
	if p := m.pool.Load(); p != nil {
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p := m.pool.Load(); p != nil {
		return p, nil
	}

	p, err := m.open(ctx, m.opts)
	if err != nil {
		return nil, err
	}
	m.pool.Store(p)
	m.logger.WithField("dialect", p.Dialect).Info("database pool ready")
	return p, nil
}

// Close releases the pool if it was opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.pool.Swap(nil)
	if p == nil {
		return nil
	}
	return p.Close()
}
