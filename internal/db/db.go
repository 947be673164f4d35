package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	driver string
	logger *zap.Logger
}

// Config holds database configuration
type Config struct {
	Driver string // "sqlite" or "pgx" (postgres)
	DBPath string // For SQLite
	DSN    string // For Postgres
}

// New creates a new database connection and runs migrations
func New(cfg Config, logger *zap.Logger) (*DB, error) {
	var sqlDB *sql.DB
	var err error

	driver := cfg.Driver
	if driver == "" {
		driver = "sqlite"
	}

	switch driver {
	case "sqlite":
		// Ensure data directory exists for SQLite
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		sqlDB, err = sql.Open("sqlite", cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}

		// SQLite supports only one writer
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)

		// Enable foreign keys and WAL mode for better concurrency
		pragmas := []string{
			"PRAGMA foreign_keys = ON",
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for _, pragma := range pragmas {
			if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
			}
		}

	case "postgres", "pgx":
		sqlDB, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres database: %w", err)
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Minute)

	default:
		return nil, fmt.Errorf("unsupported database driver: %s (expected 'sqlite' or 'postgres')", driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		driver: driver,
		logger: logger,
	}

	if err := db.runMigrations(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database initialized",
		zap.String("driver", driver),
		zap.String("path", cfg.DBPath),
		zap.String("dsn_host", maskDSN(cfg.DSN)))
	return db, nil
}

// Driver returns the active driver name ("sqlite" or "pgx").
func (db *DB) Driver() string { return db.driver }

// Rebind converts "?" placeholders to "$N" for Postgres. Queries are
// written with "?" throughout; stores pass them through here before
// execution.
func (db *DB) Rebind(query string) string {
	if db.driver != "postgres" && db.driver != "pgx" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
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

// maskDSN returns a masked version of the DSN for logging (hides password)
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if strings.Contains(dsn, "@") {
		parts := strings.Split(dsn, "@")
		if len(parts) > 1 {
			return "***@" + parts[1]
		}
	}
	return "***"
}

type migration struct {
	version string
	sql     string
}

// Migrations are inlined so a fresh binary can bootstrap any empty
// database without shipping .sql files alongside it.
var migrations = []migration{
	{
		version: "001_users",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
	},
	{
		version: "002_pages",
		sql: `
			CREATE TABLE IF NOT EXISTS pages (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
				display_name TEXT NOT NULL DEFAULT '',
				bio TEXT NOT NULL DEFAULT '',
				avatar_json TEXT NOT NULL DEFAULT '[]',
				alignment TEXT NOT NULL DEFAULT 'center',
				brand_color TEXT NOT NULL DEFAULT '#000000',
				background_color TEXT NOT NULL DEFAULT '#FFFFFF',
				theme TEXT NOT NULL DEFAULT 'DEFAULT',
				language TEXT NOT NULL DEFAULT 'en',
				footer_text TEXT NOT NULL DEFAULT '',
				multi_language INTEGER NOT NULL DEFAULT 0,
				live INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
	},
	{
		version: "003_blocks",
		sql: `
			CREATE TABLE IF NOT EXISTS blocks (
				id TEXT PRIMARY KEY,
				page_id TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
				type TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL DEFAULT '',
				icon TEXT NOT NULL DEFAULT '',
				images_json TEXT NOT NULL DEFAULT '[]',
				price REAL NOT NULL DEFAULT 0,
				currency TEXT NOT NULL DEFAULT '',
				languages_json TEXT NOT NULL DEFAULT '{}',
				parent_id TEXT NOT NULL DEFAULT '',
				anchor INTEGER NOT NULL DEFAULT 0,
				visible INTEGER NOT NULL DEFAULT 1,
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_blocks_page ON blocks(page_id, position)`,
	},
	{
		version: "004_social_links",
		sql: `
			CREATE TABLE IF NOT EXISTS social_links (
				page_id TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
				platform TEXT NOT NULL,
				url TEXT NOT NULL,
				position INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (page_id, platform)
			)`,
	},
	{
		version: "005_stats",
		sql: `
			CREATE TABLE IF NOT EXISTS stats (
				page_id TEXT NOT NULL,
				block_id TEXT NOT NULL DEFAULT '',
				day TEXT NOT NULL,
				views INTEGER NOT NULL DEFAULT 0,
				clicks INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (page_id, block_id, day)
			)`,
	},
}

// runMigrations applies all pending inlined migrations
func (db *DB) runMigrations(ctx context.Context) error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		db.logger.Info("Applying migration", zap.String("version", m.version))

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for %s: %w", m.version, err)
		}

		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}

		if _, err := tx.ExecContext(ctx, db.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"), m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.version, err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck verifies database connectivity
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.PingContext(ctx)
}

// MigrationVersion returns the count of applied migrations
func (db *DB) MigrationVersion(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return count, nil
}
