// Package store persists finished episodes to SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	id          TEXT PRIMARY KEY,
	env_id      TEXT NOT NULL,
	env_name    TEXT NOT NULL,
	agent       TEXT NOT NULL,
	"return"    DOUBLE PRECISION NOT NULL,
	length      BIGINT NOT NULL,
	finished_at BIGINT NOT NULL
)`

// Episode is one finished episode of one agent (or team).
type Episode struct {
	ID         uuid.UUID
	EnvID      uuid.UUID
	EnvName    string
	Agent      string
	Return     float64
	Length     int
	FinishedAt time.Time
}

// Store writes and reads episodes. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects with driver ("sqlite" or "pgx") and creates the episodes
// table if needed. An empty SQLite dsn opens a private in-memory database.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("store: pgx needs a dsn")
		}
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if driver == DriverSQLite {
		// One connection keeps :memory: databases shared and serializes writers.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: create episodes: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
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

// Record inserts ep, assigning an ID and finish time when they are zero.
func (s *Store) Record(ctx context.Context, ep Episode) (Episode, error) {
	if ep.ID == uuid.Nil {
		ep.ID = uuid.New()
	}
	if ep.FinishedAt.IsZero() {
		ep.FinishedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO episodes (id, env_id, env_name, agent, "return", length, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		ep.ID.String(), ep.EnvID.String(), ep.EnvName, ep.Agent, ep.Return, int64(ep.Length), ep.FinishedAt.UnixNano(),
	)
	if err != nil {
		return Episode{}, fmt.Errorf("store: record episode %s: %w", ep.ID, err)
	}
	return ep, nil
}

// List returns up to limit episodes, newest first. An empty envName lists
// every environment; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, envName string, limit int) ([]Episode, error) {
	query := `SELECT id, env_id, env_name, agent, "return", length, finished_at FROM episodes`
	var args []any
	if envName != "" {
		query += ` WHERE env_name = ?`
		args = append(args, envName)
	}
	query += ` ORDER BY finished_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list episodes: %w", err)
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		var (
			ep         Episode
			id, envID  string
			length     int64
			finishedAt int64
		)
		if err := rows.Scan(&id, &envID, &ep.EnvName, &ep.Agent, &ep.Return, &length, &finishedAt); err != nil {
			return nil, fmt.Errorf("store: scan episode: %w", err)
		}
		if ep.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("store: episode id %q: %w", id, err)
		}
		if ep.EnvID, err = uuid.Parse(envID); err != nil {
			return nil, fmt.Errorf("store: env id %q: %w", envID, err)
		}
		ep.Length = int(length)
		ep.FinishedAt = time.Unix(0, finishedAt)
		out = append(out, ep)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
