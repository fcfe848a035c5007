// Package database provides the dual-driver SQL connection: local SQLite
// by default, Turso/libsql when remote credentials are configured.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/kladi/pulso-go/pkg/config"
)

var (
	pooledConn *sql.DB
	poolKey    string
	poolMutex  sync.Mutex
)

type Database struct {
	Conn     *sql.DB
	UseTurso bool
}

// New opens (or reuses) the database connection. Turso wins when both a
// database URL and an auth token are configured; otherwise a local SQLite
// file is created on demand.
func New() (*Database, error) {
	useTurso := config.TursoDatabase != "" && config.TursoToken != ""
	key := connectionKey(useTurso)

	poolMutex.Lock()
	defer poolMutex.Unlock()

	if pooledConn != nil && poolKey == key {
		if err := pooledConn.Ping(); err == nil {
			return &Database{Conn: pooledConn, UseTurso: useTurso}, nil
		}
		pooledConn.Close()
		pooledConn = nil
	}

	var conn *sql.DB
	var err error

	if useTurso {
		connStr := config.TursoDatabase + "?authToken=" + config.TursoToken
		conn, err = sql.Open("libsql", connStr)
		if err != nil {
			return nil, fmt.Errorf("turso connection failed: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("turso ping failed: %w", err)
		}
	} else {
		dbDir := filepath.Dir(config.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
	}

	conn.SetMaxOpenConns(config.DBMaxOpenConns)
	conn.SetMaxIdleConns(config.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	pooledConn = conn
	poolKey = key

	return &Database{Conn: conn, UseTurso: useTurso}, nil
}

func connectionKey(useTurso bool) string {
	if useTurso {
		return "turso:" + config.TursoDatabase
	}
	return "sqlite:" + config.SQLitePath
}

// Close is a no-op for the pooled connection; the pool owns its lifetime.
func (db *Database) Close() error {
	return nil
}

// Shutdown closes the pooled connection for process exit.
func Shutdown() error {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if pooledConn == nil {
		return nil
	}
	err := pooledConn.Close()
	pooledConn = nil
	return err
}

func (db *Database) GetConnectionInfo() string {
	if db.UseTurso {
		return "Turso (pooled)"
	}
	return fmt.Sprintf("SQLite %s (pooled)", config.SQLitePath)
}

// EnsureSchema creates the persistence tables when they do not exist.
func (db *Database) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS override_flags (
			account_key TEXT PRIMARY KEY,
			is_test INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS account_notes (
			account_id TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			fetched_at TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
