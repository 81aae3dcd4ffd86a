package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DirectManager opens a fresh connection per acquisition and closes it
// on release. Nothing is held between requests, matching the
// per-invocation posture where the process may be frozen and thawed.
type DirectManager struct {
	dbURL string
}

func NewDirectManager(dbURL string) *DirectManager {
	return &DirectManager{dbURL: dbURL}
}

type directHandle struct {
	*pgx.Conn
}

func (h *directHandle) Release() {
	_ = h.Conn.Close(context.Background())
}

// Acquire dials a new connection and ensures the schema exists on it.
// Repeating the DDL per acquisition is the cost of having no startup
// hook in this posture.
func (m *DirectManager) Acquire(ctx context.Context) (Handle, error) {
	conn, err := pgx.Connect(ctx, m.dbURL)

	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, usersDDL); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	return &directHandle{Conn: conn}, nil
}

func (m *DirectManager) Ping(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, m.dbURL)

	if err != nil {
		return err
	}

	defer conn.Close(ctx)

	return conn.Ping(ctx)
}

// Bootstrap exists to satisfy Manager; the schema check already runs on
// every Acquire.
func (m *DirectManager) Bootstrap(ctx context.Context) error {
	h, err := m.Acquire(ctx)

	if err != nil {
		return err
	}

	h.Release()
	return nil
}

// Close is a no-op: there is nothing held between requests.
func (m *DirectManager) Close() {}
