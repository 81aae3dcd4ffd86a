package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrAcquireTimeout reports that no connection could be obtained within
// the configured acquire window.
var ErrAcquireTimeout = errors.New("timed out acquiring a database connection")

// Querier is the query surface shared by pooled and direct connections.
// Both *pgxpool.Conn and *pgx.Conn satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Handle is a leased connection. Release must be called exactly once per
// acquired handle; the store defers it on every path.
type Handle interface {
	Querier
	Release()
}

// Manager hands out connection handles. The two implementations differ
// only here; everything above them is shared.
type Manager interface {
	Acquire(ctx context.Context) (Handle, error)
	Ping(ctx context.Context) error
	Bootstrap(ctx context.Context) error
	Close()
}

// The schema is created by the managers rather than a migration step so
// a fresh database works on first boot.
const usersDDL = `
CREATE TABLE IF NOT EXISTS users (
    id            VARCHAR(255) PRIMARY KEY,
    email         VARCHAR(255) UNIQUE NOT NULL,
    name          VARCHAR(255) NOT NULL,
    password_hash VARCHAR(255),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`
