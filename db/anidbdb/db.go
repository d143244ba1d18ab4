// Package anidbdb implements the sqlite3-backed response cache for the
// anidb client: a single table mapping request text to the server's reply.
package anidbdb

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by Get when no cached reply matches the query.
// It is an expected, non-exceptional outcome, not surfaced as a storage
// failure.
var ErrNotFound = errors.New("anidbdb: not found")

// DB stores cached anidb replies in a single sqlite3 database file.
type DB struct {
	x *sqlx.DB
}

// Open opens (creating if necessary) the cache database in dir.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	// note: WAL avoids readers blocking on the writer. Within this module
	// the cache is only reached through the anidb client, which serializes
	// every access under its own lock.
	dsn := (&url.URL{
		Path: filepath.Join(dir, "cache.sqlite"),
		RawQuery: (url.Values{
			"_journal":      {"WAL"},
			"_busy_timeout": {"6000"},
		}).Encode(),
	}).String()

	x, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := x.Exec(`PRAGMA encoding = "UTF-8"`); err != nil {
		x.Close()
		return nil, err
	}

	db := &DB{x}
	if _, to, err := db.Version(); err != nil {
		db.Close()
		return nil, err
	} else if err := db.MigrateUp(context.Background(), to); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.x.Close()
}

// Get looks up the cached reply for query. It returns ErrNotFound if there
// is no cached entry.
func (db *DB) Get(query string) (code int32, data string, err error) {
	var row struct {
		Code   int32  `db:"code"`
		Answer string `db:"answer"`
	}
	if err := db.x.Get(&row, `SELECT code, answer FROM apicall WHERE query = ?`, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return row.Code, row.Answer, nil
}

// Put stores (or replaces) the reply for query.
func (db *DB) Put(query string, code int32, data string) error {
	_, err := db.x.Exec(
		`INSERT OR REPLACE INTO apicall (query, code, answer, time_created) VALUES (?, ?, ?, ?)`,
		query, code, data, time.Now().Unix(),
	)
	return err
}
