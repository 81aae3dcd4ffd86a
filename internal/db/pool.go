package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"userhub/internal/config"
	"userhub/internal/observability"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolManager serves handles from a pgxpool held at a fixed size.
// MinConns equals MaxConns so the whole pool is established at startup
// instead of on the request path; idle connections past the threshold
// are closed and replaced by the pool's health checker.
type PoolManager struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	prom           *observability.Prom

	closeOnce sync.Once
}

func NewPoolManager(ctx context.Context, cfg config.Config, prom *observability.Prom) (*PoolManager, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DBURL)

	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = int32(cfg.PoolSize)
	poolCfg.MinConns = int32(cfg.PoolSize)
	poolCfg.MaxConnIdleTime = cfg.ConnIdleTime
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)

	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)

	if err != nil {
		pool.Close()
		return nil, err
	}

	return &PoolManager{
		pool:           pool,
		acquireTimeout: cfg.AcquireTimeout,
		prom:           prom,
	}, nil
}

// Acquire leases a pooled connection, waiting at most the acquire
// timeout when every connection is checked out.
func (m *PoolManager) Acquire(ctx context.Context) (Handle, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.acquireTimeout)
	defer cancel()

	conn, err := m.pool.Acquire(ctx)

	if err != nil {
		outcome := "error"

		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			err = ErrAcquireTimeout
		}

		m.observeAcquire(outcome, time.Since(start))
		return nil, err
	}

	m.observeAcquire("ok", time.Since(start))
	return conn, nil
}

func (m *PoolManager) Ping(ctx context.Context) error {
	return m.pool.Ping(ctx)
}

func (m *PoolManager) Bootstrap(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, usersDDL)
	return err
}

// Close stops new acquisitions and blocks until in-flight handles are
// released. Shutdown paths may race, so it is safe to call twice.
func (m *PoolManager) Close() {
	m.closeOnce.Do(m.pool.Close)
}

// Stat exposes the pool counters for diagnostics.
func (m *PoolManager) Stat() *pgxpool.Stat {
	return m.pool.Stat()
}

func (m *PoolManager) observeAcquire(outcome string, waited time.Duration) {
	if m.prom != nil {
		m.prom.ObservePoolAcquire(outcome, waited.Seconds())
	}
}
