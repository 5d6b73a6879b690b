// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL/MariaDB
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL
	_ "github.com/microsoft/go-mssqldb" // SQL Server
	_ "modernc.org/sqlite"              // SQLite, pure Go

	"github.com/apimgr/metaseek/internal/config"
)

// Driver query timeouts. All queries against the ban store run under
// a bounded context — a hung driver must not stall a search.
const (
	TimeoutRead       = 5 * time.Second
	TimeoutWrite      = 10 * time.Second
	TimeoutMigration  = 1 * time.Minute
)

// DB wraps *sql.DB with the driver selection logic for the ban store,
// shared across sqlite/postgres/mysql/mssql backends.
type DB struct {
	sql    *sql.DB
	driver string
}

// Open connects to the database named by cfg.Driver.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "postgres", "postgresql":
		db, err = openPostgres(cfg)
	case "mysql", "mariadb":
		db, err = openMySQL(cfg)
	case "mssql", "sqlserver":
		db, err = openMSSQL(cfg)
	case "sqlite", "sqlite3", "":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	return &DB{sql: db, driver: cfg.Driver}, nil
}

func openSQLite(cfg config.DatabaseConfig) (*sql.DB, error) {
	path := cfg.SQLite.Path
	if path == "" {
		path = "metaseek.db"
	}
	journalMode := cfg.SQLite.JournalMode
	if journalMode == "" {
		journalMode = "WAL"
	}
	busyTimeout := cfg.SQLite.BusyTimeout
	if busyTimeout == 0 {
		busyTimeout = 5000
	}
	dsn := fmt.Sprintf("%s?_journal_mode=%s&_busy_timeout=%d", path, journalMode, busyTimeout)
	return sql.Open("sqlite", dsn)
}

func openPostgres(cfg config.DatabaseConfig) (*sql.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, cfg.User, cfg.Password, cfg.Name, sslMode)
	return sql.Open("pgx", dsn)
}

func openMySQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.User, cfg.Password, host, port, cfg.Name)
	return sql.Open("mysql", dsn)
}

func openMSSQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	port := cfg.Port
	if port == 0 {
		port = 1433
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s", cfg.User, cfg.Password, host, port, cfg.Name)
	return sql.Open("sqlserver", dsn)
}

// rebind rewrites a query written with "?" placeholders into the
// placeholder syntax the active driver expects, so bans.go can write
// its SQL once instead of branching per driver.
func (d *DB) rebind(query string) string {
	switch d.driver {
	case "postgres", "postgresql":
		var b []byte
		n := 0
		for i := 0; i < len(query); i++ {
			if query[i] == '?' {
				n++
				b = append(b, '$')
				b = append(b, []byte(fmt.Sprintf("%d", n))...)
				continue
			}
			b = append(b, query[i])
		}
		return string(b)
	case "mssql", "sqlserver":
		var b []byte
		n := 0
		for i := 0; i < len(query); i++ {
			if query[i] == '?' {
				n++
				b = append(b, []byte(fmt.Sprintf("@p%d", n))...)
				continue
			}
			b = append(b, query[i])
		}
		return string(b)
	default:
		return query
	}
}

// Driver returns the configured driver name.
func (d *DB) Driver() string { return d.driver }

// Ping verifies connectivity with a bounded deadline.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutRead)
	defer cancel()
	return d.sql.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.sql.Close()
}
