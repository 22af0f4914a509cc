// Package database is the durable reservation store backed by SQLite.
// The unique index on (date, time, barber_id) is what enforces the
// no-double-booking invariant for every writer, conversational or HTTP.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	// ErrSlotTaken signals a uniqueness conflict on (date, time, barber).
	ErrSlotTaken = errors.New("slot already reserved")
	// ErrReservationNotFound signals a cancellation target that does not exist.
	ErrReservationNotFound = errors.New("reservation not found")
)

// DB wraps the SQLite connection plus an optional Redis read cache.
type DB struct {
	*sql.DB
	logger *zerolog.Logger

	cache    *redis.Client
	cacheTTL time.Duration
}

// New opens the database at path, applies connection settings and runs
// migrations.
func New(path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

// UseRedisCache enables a short-TTL read-through cache for per-day slot
// lookups. Writes invalidate the affected keys; the unique index still
// catches any staleness at commit time.
func (db *DB) UseRedisCache(client *redis.Client, ttl time.Duration) {
	db.cache = client
	db.cacheTTL = ttl
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			service TEXT NOT NULL,
			barber_id TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			price REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Uniqueness of the slot triple; concurrent commits for the same
		// slot lose here and surface as ErrSlotTaken.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_slot ON reservations(date, time, barber_id)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_name ON reservations(name)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
