// Package store persists folded round results and standings snapshots to
// PostgreSQL so downstream consumers can query past rounds without replaying
// the ingest pipeline.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database represents the PostgreSQL connection
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase creates a new database connection
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migration is one versioned schema step. The SQL is compiled in so the
// binary never depends on a migrations directory being mounted next to it.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_create_race_results.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS race_results (
				id              SERIAL PRIMARY KEY,
				season          INT NOT NULL,
				round           INT NOT NULL,
				session_type    VARCHAR(16) NOT NULL,
				driver_id       VARCHAR(32) NOT NULL,
				driver_name     VARCHAR(128) NOT NULL,
				constructor     VARCHAR(128) NOT NULL,
				grid_position   INT NOT NULL,
				finish_position INT,
				status          VARCHAR(16) NOT NULL,
				laps_completed  INT NOT NULL,
				points          INT NOT NULL,
				best_lap        DOUBLE PRECISION,
				avg_speed_kph   DOUBLE PRECISION,
				gap_to_winner   VARCHAR(32) NOT NULL DEFAULT '',
				created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (season, round, session_type, driver_id)
			);
			CREATE INDEX IF NOT EXISTS idx_race_results_round
				ON race_results (season, round);
		`,
	},
	{
		version: "002_create_standings_snapshots.sql",
		sql: `
			CREATE TABLE IF NOT EXISTS standings_snapshots (
				id         SERIAL PRIMARY KEY,
				season     INT NOT NULL,
				round      INT NOT NULL,
				snapshot   JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (season, round)
			);
		`,
	},
}

// RunMigrations executes all migrations in order
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")

	return nil
}

// createMigrationsTable creates a table to track which migrations have been run
func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

// runMigration applies a single migration if it hasn't been applied yet
func (db *Database) runMigration(m migration) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", m.version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", m.version)
	return nil
}

// HealthCheck performs a health check on the database
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
