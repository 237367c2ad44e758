package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/obs"
)

// SQLLookupCache is the durable lookup cache stored in cep_distance_cache.
// It works against SQLite or Postgres; every read-then-write pair runs in a
// single transaction so concurrent requests for one key never lose a hit.
type SQLLookupCache struct {
	DB      *sql.DB
	Dialect Dialect
	Now     func() time.Time
}

func NewSQLLookupCache(db *sql.DB, d Dialect) *SQLLookupCache {
	return &SQLLookupCache{DB: db, Dialect: d, Now: time.Now}
}

const entryColumns = `cep_origem, cep_destino, vehicle_type, distance_km, time_min,
    distance_unit, time_unit, created_at, last_used_at, hit_count`

// Get returns the stored entry and records the hit. The returned values are
// the ones read before hit_count and last_used_at were bumped.
func (s *SQLLookupCache) Get(ctx context.Context, key domain.LookupKey) (_ domain.CacheEntry, _ bool, err error) {
	defer obs.Time(ctx, "lookup.cache.Get")(&err)

	if err := s.check(key); err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("get lookup cache: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("get lookup cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + entryColumns + `
    FROM cep_distance_cache
    WHERE cep_origem = ? AND cep_destino = ? AND vehicle_type = ?`
	if s.Dialect == Postgres {
		q += ` FOR UPDATE`
	}

	e, err := scanEntry(tx.QueryRowContext(ctx, s.rebind(q), key.Origin, key.Destination, string(key.Mode)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("get lookup cache: select: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
    UPDATE cep_distance_cache
    SET hit_count = hit_count + 1,
        last_used_at = ?
    WHERE cep_origem = ? AND cep_destino = ? AND vehicle_type = ?`),
		s.now(), key.Origin, key.Destination, string(key.Mode))
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("get lookup cache: update hits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("get lookup cache: commit: %w", err)
	}

	return e, true, nil
}

// Upsert writes route for key. An existing row keeps created_at and
// hit_count; a new row starts with hit_count 1.
func (s *SQLLookupCache) Upsert(
	ctx context.Context,
	key domain.LookupKey,
	route domain.RouteResult,
	distanceUnit, timeUnit string,
) (err error) {
	defer obs.Time(ctx, "lookup.cache.Upsert")(&err)

	if err := s.check(key); err != nil {
		return fmt.Errorf("upsert lookup cache: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert lookup cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	_, err = tx.ExecContext(ctx, s.rebind(`
    INSERT INTO cep_distance_cache (`+entryColumns+`)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
    ON CONFLICT (cep_origem, cep_destino, vehicle_type) DO UPDATE
    SET distance_km = EXCLUDED.distance_km,
        time_min = EXCLUDED.time_min,
        distance_unit = EXCLUDED.distance_unit,
        time_unit = EXCLUDED.time_unit,
        last_used_at = EXCLUDED.last_used_at`),
		key.Origin, key.Destination, string(key.Mode),
		route.DistanceKm, route.TimeMin, distanceUnit, timeUnit,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert lookup cache %s->%s (%s): %w", key.Origin, key.Destination, key.Mode, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert lookup cache: commit: %w", err)
	}
	return nil
}

// Peek reads an entry without recording a hit.
func (s *SQLLookupCache) Peek(ctx context.Context, key domain.LookupKey) (domain.CacheEntry, bool, error) {
	if err := s.check(key); err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("peek lookup cache: %w", err)
	}

	e, err := scanEntry(s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+entryColumns+`
    FROM cep_distance_cache
    WHERE cep_origem = ? AND cep_destino = ? AND vehicle_type = ?`),
		key.Origin, key.Destination, string(key.Mode)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("peek lookup cache: %w", err)
	}
	return e, true, nil
}

// Top lists the n most requested entries, most recently used first on ties.
func (s *SQLLookupCache) Top(ctx context.Context, n int) ([]domain.CacheEntry, error) {
	if s.DB == nil {
		return nil, errors.New("lookup cache: db is nil")
	}
	if n <= 0 {
		return []domain.CacheEntry{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(`SELECT `+entryColumns+`
    FROM cep_distance_cache
    ORDER BY hit_count DESC, last_used_at DESC
    LIMIT ?`), n)
	if err != nil {
		return nil, fmt.Errorf("top lookup cache: query: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CacheEntry, 0, n)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("top lookup cache: scan rows: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top lookup cache: row iteration: %w", err)
	}
	return out, nil
}

func (s *SQLLookupCache) check(key domain.LookupKey) error {
	if s.DB == nil {
		return errors.New("lookup cache: db is nil")
	}
	if key.Origin == "" || key.Destination == "" || key.Mode == "" {
		return errors.New("lookup cache: incomplete key")
	}
	return nil
}

func (s *SQLLookupCache) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// rebind turns ? placeholders into $n for Postgres.
func (s *SQLLookupCache) rebind(q string) string {
	if s.Dialect != Postgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (domain.CacheEntry, error) {
	var (
		e                   domain.CacheEntry
		mode                string
		createdAt, lastUsed dbTime
	)
	err := row.Scan(
		&e.Key.Origin, &e.Key.Destination, &mode,
		&e.Route.DistanceKm, &e.Route.TimeMin,
		&e.DistanceUnit, &e.TimeUnit,
		&createdAt, &lastUsed, &e.HitCount,
	)
	if err != nil {
		return domain.CacheEntry{}, err
	}
	e.Key.Mode = domain.TravelMode(mode)
	e.CreatedAt = createdAt.Time
	e.LastUsedAt = lastUsed.Time
	return e, nil
}

// dbTime scans timestamps that drivers hand back either as time.Time or as
// text.
type dbTime struct {
	time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognized format %q", s)
}
