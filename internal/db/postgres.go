package db

import (
	"database/sql"
	"fmt"
	"log"

	"cam-server/internal/config"

	_ "github.com/lib/pq"
)

func ConnectPostgres(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
		cfg.PostgresSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create schema if it doesn't exist
	createSchemaSQL := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", cfg.PostgresSchema)
	if _, err := db.Exec(createSchemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	// Set search_path to use the schema
	setSearchPathSQL := fmt.Sprintf("SET search_path TO %s, public", cfg.PostgresSchema)
	if _, err := db.Exec(setSearchPathSQL); err != nil {
		return nil, fmt.Errorf("failed to set search_path: %w", err)
	}

	// Run migrations
	if err := runMigrations(db, cfg.PostgresSchema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Printf("PostgreSQL connection established (database: %s, schema: %s)", cfg.PostgresDB, cfg.PostgresSchema)
	return db, nil
}

func runMigrations(db *sql.DB, schema string) error {
	log.Println("Running migrations...")

	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			last_login TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_approved ON users(approved)`,

		// Create cameras table
		`CREATE TABLE IF NOT EXISTS cameras (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			device_id UUID NOT NULL,
			camera_index INT NOT NULL,
			status BOOLEAN NOT NULL DEFAULT TRUE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cameras_user_id ON cameras(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cameras_device_id ON cameras(device_id)`,

		// Create videos table
		`CREATE TABLE IF NOT EXISTS videos (
			id BIGSERIAL PRIMARY KEY,
			file_path TEXT NOT NULL,
			frame_count INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			recorded_at TIMESTAMP WITH TIME ZONE NOT NULL,
			camera_id BIGINT NOT NULL REFERENCES cameras(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_camera_id ON videos(camera_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_status ON videos(status)`,

		// Create processed_frames table
		`CREATE TABLE IF NOT EXISTS processed_frames (
			id BIGSERIAL PRIMARY KEY,
			file_path TEXT NOT NULL,
			filter_type TEXT NOT NULL,
			processed_at TIMESTAMP WITH TIME ZONE NOT NULL,
			video_id BIGINT NOT NULL REFERENCES videos(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_frames_video_id ON processed_frames(video_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Printf("Migrations completed successfully in schema: %s", schema)
	return nil
}
