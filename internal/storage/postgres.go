package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate creates the storefront_state table if needed.
func Migrate(ctx context.Context, db database.MigrationDB, logger *slog.Logger) error {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	return database.Migrate(ctx, db, sub, logger)
}

// Pool is the subset of *pgxpool.Pool used by PostgresKV.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const (
	selectState = `SELECT value FROM storefront_state WHERE key = $1 AND updated_at > $2`
	upsertState = `INSERT INTO storefront_state (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	touchState = `UPDATE storefront_state SET updated_at = NOW() WHERE key = $1`
	purgeState = `DELETE FROM storefront_state WHERE updated_at <= $1`
)

// PostgresKV stores collections as JSONB rows. Rows not written or read for
// longer than ttl are treated as absent, matching RedisKV expiry.
type PostgresKV struct {
	pool   Pool
	ttl    time.Duration
	tracer database.QueryTracer
	now    func() time.Time
}

// NewPostgresKV creates a Postgres-backed substrate.
func NewPostgresKV(pool Pool, ttl time.Duration, tracer database.QueryTracer) *PostgresKV {
	tracer.System = "postgresql"
	return &PostgresKV{pool: pool, ttl: ttl, tracer: tracer, now: time.Now}
}

func (p *PostgresKV) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, end := p.tracer.Start(ctx, "Get", selectState)
	defer func() { end(err) }()

	err = p.pool.QueryRow(ctx, selectState, key, p.now().Add(-p.ttl)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("select state %s: %w", key, err)
	}

	if _, err = p.pool.Exec(ctx, touchState, key); err != nil {
		return nil, fmt.Errorf("touch state %s: %w", key, err)
	}
	return data, nil
}

func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := p.tracer.Start(ctx, "Set", upsertState)
	defer func() { end(err) }()

	if _, err = p.pool.Exec(ctx, upsertState, key, value); err != nil {
		return fmt.Errorf("upsert state %s: %w", key, err)
	}
	return nil
}

func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Purge deletes expired rows and returns how many were removed.
func (p *PostgresKV) Purge(ctx context.Context) (n int64, err error) {
	ctx, end := p.tracer.Start(ctx, "Purge", purgeState)
	defer func() { end(err) }()

	tag, err := p.pool.Exec(ctx, purgeState, p.now().Add(-p.ttl))
	if err != nil {
		return 0, fmt.Errorf("purge expired state: %w", err)
	}
	return tag.RowsAffected(), nil
}
