package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the tables this service reads and writes. users and
// projects are owned by the surrounding application; they are created here
// only so a fresh database is usable.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users (id)
);

CREATE TABLE IF NOT EXISTS user_swipes (
	actor_id TEXT NOT NULL REFERENCES users (id),
	target_id TEXT NOT NULL REFERENCES users (id),
	action TEXT NOT NULL CHECK (action IN ('LIKE', 'PASS')),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (actor_id, target_id),
	CHECK (actor_id <> target_id)
);

CREATE INDEX IF NOT EXISTS user_swipes_target_idx ON user_swipes (target_id, actor_id);

CREATE TABLE IF NOT EXISTS project_swipes (
	actor_id TEXT NOT NULL REFERENCES users (id),
	project_id TEXT NOT NULL REFERENCES projects (id),
	action TEXT NOT NULL CHECK (action IN ('LIKE', 'SKIP', 'SUPERLIKE')),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (actor_id, project_id)
);

CREATE TABLE IF NOT EXISTS match_announcements (
	user_a_id TEXT COLLATE "C" NOT NULL,
	user_b_id TEXT COLLATE "C" NOT NULL,
	announced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_a_id, user_b_id),
	CONSTRAINT ` + pairOrderConstraint + ` CHECK (` + pairOrderCheck + `)
);

DO $$
BEGIN
	ALTER TABLE match_announcements DROP CONSTRAINT IF EXISTS match_announcements_check;
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint WHERE conname = '` + pairOrderConstraint + `'
	) THEN
		ALTER TABLE match_announcements ADD CONSTRAINT ` + pairOrderConstraint + ` CHECK (` + pairOrderCheck + `);
	END IF;
END
$$;
`

// Pair keys are ordered bytewise, so the check must not follow the database
// collation.
const (
	pairOrderConstraint = "match_announcements_pair_order"
	pairOrderCheck      = `user_a_id COLLATE "C" < user_b_id COLLATE "C"`
)
