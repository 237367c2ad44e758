package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects placeholder style and row locking for the SQL caches.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

const createLookupTable = `
CREATE TABLE IF NOT EXISTS cep_distance_cache (
    cep_origem      TEXT             NOT NULL,
    cep_destino     TEXT             NOT NULL,
    vehicle_type    TEXT             NOT NULL,
    distance_km     DOUBLE PRECISION NOT NULL,
    time_min        DOUBLE PRECISION NOT NULL,
    distance_unit   TEXT             NOT NULL,
    time_unit       TEXT             NOT NULL,
    created_at      TIMESTAMP        NOT NULL,
    last_used_at    TIMESTAMP        NOT NULL,
    hit_count       INTEGER          NOT NULL DEFAULT 1,
    PRIMARY KEY (cep_origem, cep_destino, vehicle_type)
);`

const createLookupIndex = `
CREATE INDEX IF NOT EXISTS idx_cep_distance_cache_hits
    ON cep_distance_cache (hit_count DESC, last_used_at DESC);`

// InitSchema creates the persistent lookup table if it does not exist.
func InitSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: db is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{createLookupTable, createLookupIndex} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema (%s): %w", d, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit: %w", err)
	}
	return nil
}
