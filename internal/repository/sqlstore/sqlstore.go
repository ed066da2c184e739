// Package sqlstore implements the repository interfaces on top of a SQL
// database. Two engines are supported:
//
//   - SQLite through modernc.org/sqlite (pure Go, the default; a file path or
//     ":memory:")
//   - PostgreSQL through github.com/lib/pq (any postgres:// URL)
//
// Queries are written once with ? placeholders and rebound by sqlx for the
// active driver. The schema is applied with golang-migrate at Open time.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/sakif/nutrition-tracker/internal/repository"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// sqlx knows "sqlite3" but not the modernc driver name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var _ repository.Store = (*DB)(nil)

// DB wraps a sqlx connection pool and implements repository.Store.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// DriverFor picks the driver for a DATABASE_URL value.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Open connects to dsn, verifies the connection and applies migrations.
//
// For SQLite the pool is capped at one connection: writes serialize, and an
// in-memory database would otherwise be a different database per connection.
func Open(ctx context.Context, dsn string) (*DB, error) {
	driver := DriverFor(dsn)
	source := dsn
	if driver == DriverSQLite {
		source = sqliteDSN(dsn)
	}

	conn, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging %s database: %w", driver, err)
	}

	if err := migrateUp(conn.DB, driver); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	return newDB(conn, driver), nil
}

func newDB(conn *sqlx.DB, driver string) *DB {
	return &DB{conn: conn, driver: driver}
}

// sqliteDSN appends the connection options the store relies on: foreign keys,
// a busy timeout, IMMEDIATE write transactions and a sortable time format.
func sqliteDSN(path string) string {
	opts := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite"
	if path != ":memory:" {
		opts += "&_pragma=journal_mode(WAL)"
	}
	if strings.Contains(path, "?") {
		return path + "&" + opts
	}
	return path + "?" + opts
}

// Driver returns the driver name the store was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}
