package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PGNotifyChannel is the LISTEN/NOTIFY channel PGStorage publishes on.
const PGNotifyChannel = "usekit_storage"

// PGConn is the subset of *pgxpool.Pool and *pgx.Conn used by PGStorage.
type PGConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStorage stores keys in a Postgres table. Every write also publishes a
// NOTIFY so other processes running Listen observe it as a StorageEvent.
type PGStorage struct {
	db     PGConn
	table  string
	events listenerSet[StorageEvent]
}

// NewPGStorage returns a Storage over table. Call EnsureSchema once before
// use.
func NewPGStorage(db PGConn, table string) *PGStorage {
	if table == "" {
		table = "usekit_storage"
	}
	return &PGStorage{db: db, table: table}
}

// EnsureSchema creates the key/value table if it does not exist.
func (p *PGStorage) EnsureSchema(ctx context.Context) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgx.Identifier{p.table}.Sanitize())
	if _, err := p.db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create storage table: %w", err)
	}
	return nil
}

// Get implements Storage.
func (p *PGStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	sql := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, pgx.Identifier{p.table}.Sanitize())
	err := p.db.QueryRow(ctx, sql, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pg get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Storage.
func (p *PGStorage) Set(ctx context.Context, key, value string) error {
	old, _, err := p.Get(ctx, key)
	if err != nil {
		return err
	}
	sql := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, pgx.Identifier{p.table}.Sanitize())
	if _, err := p.db.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("pg set %q: %w", key, err)
	}
	ev := StorageEvent{Key: key, OldValue: old, NewValue: value}
	p.notify(ctx, ev)
	if old != value {
		p.events.emit(ev)
	}
	return nil
}

// Remove implements Storage.
func (p *PGStorage) Remove(ctx context.Context, key string) error {
	old, existed, err := p.Get(ctx, key)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	sql := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, pgx.Identifier{p.table}.Sanitize())
	if _, err := p.db.Exec(ctx, sql, key); err != nil {
		return fmt.Errorf("pg remove %q: %w", key, err)
	}
	ev := StorageEvent{Key: key, OldValue: old, Removed: true}
	p.notify(ctx, ev)
	p.events.emit(ev)
	return nil
}

// Subscribe implements Storage.
func (p *PGStorage) Subscribe(fn func(StorageEvent)) func() {
	return p.events.add(fn)
}

// notify publishes ev for other processes. Failure to notify does not fail
// the write.
func (p *PGStorage) notify(ctx context.Context, ev StorageEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = p.db.Exec(ctx, `SELECT pg_notify($1, $2)`, PGNotifyChannel, string(payload))
}

// Listen blocks on conn, a dedicated connection, and re-emits NOTIFY
// payloads to subscribers until ctx is done. Writes made by this process
// arrive twice; subscribers see the duplicate as a no-op.
func (p *PGStorage) Listen(ctx context.Context, conn *pgx.Conn) error {
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{PGNotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		var ev StorageEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			continue
		}
		p.events.emit(ev)
	}
}
