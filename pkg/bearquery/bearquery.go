// Package bearquery provides read-only, minimal-contention access to the
// Bear app's SQLite database.
//
// # Safety Guarantees
//
// Bear owns its database file and may write to it at any moment. Every query
// here runs through layered protections so reads never corrupt or block
// Bear's own writes for longer than one statement:
//
//  1. Read-only file access (mode=ro open flag)
//  2. No internal driver mutex (SQLITE_OPEN_NOMUTEX)
//  3. query_only mode enforced at the engine as an independent safeguard
//  4. Short-lived connections: opened per call, closed before the call returns
//  5. Bounded busy wait (default 5s) instead of failing or blocking forever
//
// # Schema Normalization
//
// Bear's schema is generated by Core Data and shifts between app versions,
// most visibly in the numbered notes<->tags junction table (Z_5TAGS,
// Z_7TAGS, ...). [Open] discovers the physical layout once and caches a
// normalizing SQL preamble that exposes stable logical views: notes, tags,
// note_tags, note_links. All queries - typed and generic - address only
// those views.
//
// # Snapshots
//
// Each call sees the file as it is when its own connection opens. Two
// sequential calls can observe mutually inconsistent states if Bear writes
// in between; holding a transaction across calls would contend with Bear's
// writer and is deliberately not offered.
//
// # Example
//
//	db, err := bearquery.Open(ctx, bearquery.Config{})
//	if err != nil {
//	    return err
//	}
//
//	notes, err := db.Notes(ctx, bearquery.NewNotesQuery())
//	for _, note := range notes {
//	    fmt.Println(note.Title)
//	}
package bearquery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// defaultBusyTimeout bounds how long a connection retries against a
// momentarily locked database before giving up with [ErrBusy].
const defaultBusyTimeout = 5000 * time.Millisecond

// Config holds settings for [Open]. The zero value targets the standard Bear
// database location with the default busy timeout.
type Config struct {
	// Path is the database file location. Empty means [DefaultPath].
	Path string

	// BusyTimeout bounds the engine's internal retry when Bear holds the
	// write lock. Zero means 5s.
	BusyTimeout time.Duration
}

// DB is a handle to Bear's database.
//
// Opening a handle performs schema discovery once; afterwards the handle
// holds only immutable state (path, layout, generated preamble) and no live
// connection, so it is safe for concurrent use from multiple goroutines.
type DB struct {
	path        string
	busyTimeout time.Duration
	layout      SchemaLayout
	preamble    string

	// open creates the short-lived read-only connection for one unit of
	// work. Overridable in tests.
	open func(ctx context.Context) (*sqlx.DB, error)
}

// Open validates the database location, discovers the schema layout, and
// returns a handle. No connection stays open after Open returns.
//
// Returns [ErrNoHomeDir], [ErrDatabaseNotFound], [ErrBusy], or [ErrSchema].
func Open(ctx context.Context, cfg Config) (*DB, error) {
	path := cfg.Path

	if path == "" {
		var err error

		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, path)
		}

		return nil, fmt.Errorf("%w: stat %s: %s", ErrDatabaseNotFound, path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrDatabaseNotFound, path)
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout == 0 {
		busyTimeout = defaultBusyTimeout
	}

	db := &DB{
		path:        path,
		busyTimeout: busyTimeout,
	}
	db.open = db.openReadOnly

	err = db.withConn(ctx, func(conn *sqlx.DB) error {
		layout, discoverErr := discoverLayout(ctx, conn)
		if discoverErr != nil {
			return discoverErr
		}

		db.layout = layout

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	db.preamble = generatePreamble(db.layout)

	return db, nil
}

// Path returns the database file location this handle reads from.
func (db *DB) Path() string {
	return db.path
}

// Layout returns the discovered junction-table layout.
func (db *DB) Layout() SchemaLayout {
	return db.layout
}

// withConn is the sole path to a live connection: open read-only, enforce
// query_only, run fn, close on every exit path. The connection never escapes
// fn's lifetime and the handle keeps no reference to it.
func (db *DB) withConn(ctx context.Context, fn func(conn *sqlx.DB) error) error {
	conn, err := db.open(ctx)
	if err != nil {
		return mapBusy(err)
	}

	defer func() { _ = conn.Close() }()

	// Second, engine-level safeguard on top of mode=ro: even a write that
	// slips into fn is rejected by SQLite itself.
	_, err = conn.ExecContext(ctx, "PRAGMA query_only = ON")
	if err != nil {
		return mapBusy(fmt.Errorf("enforce query_only: %w", err))
	}

	return mapBusy(fn(conn))
}

// openReadOnly opens the physical file with read-only, no-mutex flags and
// the configured busy timeout, and verifies the connection with a ping.
func (db *DB) openReadOnly(ctx context.Context) (*sqlx.DB, error) {
	conn, err := sqlx.Open("sqlite3", readOnlyDSN(db.path, db.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", db.path, err)
	}

	// One physical connection per unit of work; the pool must not hold a
	// second handle on Bear's file.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	err = conn.PingContext(ctx)
	if err != nil {
		_ = conn.Close()

		if sqliteCode(err) == sqlite3.ErrCantOpen {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, db.path)
		}

		return nil, fmt.Errorf("open %s: %w", db.path, err)
	}

	return conn, nil
}

// readOnlyDSN builds the driver DSN carrying the non-interference contract:
// read-only open mode, no driver mutex, bounded busy wait, and query-only
// pragma applied on connect.
func readOnlyDSN(path string, busyTimeout time.Duration) string {
	return "file:" + path +
		"?mode=ro" +
		"&_mutex=no" +
		"&_query_only=true" +
		"&_busy_timeout=" + strconv.FormatInt(busyTimeout.Milliseconds(), 10)
}

// mapBusy tags engine busy/locked failures with [ErrBusy], leaving every
// other error untouched.
func mapBusy(err error) error {
	if err == nil {
		return nil
	}

	code := sqliteCode(err)
	if code == sqlite3.ErrBusy || code == sqlite3.ErrLocked {
		return &busyError{err: err}
	}

	return err
}

// sqliteCode extracts the sqlite3 error code from an error chain, or -1.
func sqliteCode(err error) sqlite3.ErrNo {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code
	}

	return -1
}
