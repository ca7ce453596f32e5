// Package persistence provides SQLite-based world state storage.
// Every settlement is loaded, mutated and saved as one aggregate inside a
// single transaction, serialized per settlement.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/world"
)

// EventSink receives the events of a unit after it commits.
type EventSink interface {
	Record(ctx context.Context, events []world.Event)
}

// Options tune a DB.
type Options struct {
	Retry  config.RetrySettings
	Limits world.Limits // Checked by the colony invariants before every commit
}

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn      *sqlx.DB
	opts      Options
	locks     *keyedMutex
	sink      EventSink
	retryable func(error) bool
}

// Open opens or creates a SQLite database at the given path.
func Open(path string, opts Options) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if opts.Retry.Attempts < 1 {
		opts.Retry.Attempts = 1
	}
	db := &DB{
		conn:      conn,
		opts:      opts,
		locks:     newKeyedMutex(),
		retryable: isBusy,
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SetSink installs the receiver of committed colony events.
func (db *DB) SetSink(sink EventSink) {
	db.sink = sink
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS owners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		token_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		tick_count INTEGER NOT NULL,
		current_season TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES owners(id),
		name TEXT NOT NULL,
		food INTEGER NOT NULL CHECK (food >= 0),
		wood INTEGER NOT NULL CHECK (wood >= 0),
		stone INTEGER NOT NULL CHECK (stone >= 0),
		magic INTEGER NOT NULL CHECK (magic >= 0),
		happy_duration INTEGER NOT NULL DEFAULT 0,
		happiness_boost REAL NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		settlement_id INTEGER NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		terrain TEXT NOT NULL,
		UNIQUE (settlement_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		settlement_id INTEGER NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
		building_type TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		progress INTEGER NOT NULL CHECK (progress BETWEEN 0 AND 100),
		constructed INTEGER NOT NULL,
		UNIQUE (settlement_id, x, y)
	);

	CREATE TABLE IF NOT EXISTS settlers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		settlement_id INTEGER NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		mood TEXT NOT NULL,
		hunger INTEGER NOT NULL CHECK (hunger >= 0),
		building_id INTEGER REFERENCES buildings(id) DEFERRABLE INITIALLY DEFERRED,
		house_id INTEGER REFERENCES buildings(id) DEFERRABLE INITIALLY DEFERRED,
		node_id INTEGER REFERENCES nodes(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
		birth_tick INTEGER,
		experience INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		settlement_id INTEGER NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
		tile_id INTEGER NOT NULL UNIQUE REFERENCES tiles(id) ON DELETE CASCADE,
		archetype TEXT NOT NULL,
		name TEXT NOT NULL,
		resource TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		max_quantity INTEGER NOT NULL,
		regen_rate INTEGER NOT NULL,
		lore TEXT NOT NULL,
		gatherer_id INTEGER REFERENCES settlers(id) DEFERRABLE INITIALLY DEFERRED
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		settlement_id INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_settlement ON events(settlement_id, id);
	CREATE INDEX IF NOT EXISTS idx_settlements_owner ON settlements(owner_id);
	CREATE INDEX IF NOT EXISTS idx_settlers_settlement ON settlers(settlement_id);
	CREATE INDEX IF NOT EXISTS idx_buildings_settlement ON buildings(settlement_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_settlement ON nodes(settlement_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// withTx runs fn in a transaction, retrying the whole attempt with
// exponential backoff while the database reports contention.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	delay := db.opts.Retry.Backoff
	for attempt := 1; ; attempt++ {
		err := db.tryTx(ctx, fn)
		if err == nil || !db.retryable(err) {
			return err
		}
		if attempt >= db.opts.Retry.Attempts {
			return fmt.Errorf("%w after %d attempts: %v", world.ErrConflict, attempt, err)
		}

		slog.Warn("store contention, retrying", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (db *DB) tryTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// isBusy reports whether err is SQLite lock contention.
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
