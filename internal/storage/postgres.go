package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/hacklytics/viralcast/internal/models"
)

// PostgresStore mirrors the CSV feature store into PostgreSQL for
// querying across batch runs. It is optional: when no POSTGRES_URL is
// configured the pipeline runs CSV-only.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(postgresURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (p *PostgresStore) initSchema() error {
	schema := `
	CREATE SCHEMA IF NOT EXISTS viralcast;

	-- One row per analyzed video; summaries are JSONB documents so the
	-- analysis schema can evolve without column migrations.
	CREATE TABLE IF NOT EXISTS viralcast.video_features (
		video_filename VARCHAR(512) PRIMARY KEY,
		duration FLOAT NOT NULL,
		social_media_content JSONB NOT NULL,
		audio_features JSONB NOT NULL,
		analyzed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Batch analysis runs
	CREATE TABLE IF NOT EXISTS viralcast.batch_jobs (
		job_id VARCHAR(255) PRIMARY KEY,
		status VARCHAR(50) NOT NULL,
		total INT NOT NULL,
		processed INT NOT NULL DEFAULT 0,
		skipped INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP,
		error TEXT
	);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_video_features_analyzed_at ON viralcast.video_features(analyzed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_jobs_status ON viralcast.batch_jobs(status)`,
	}
	for _, stmt := range indexes {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w (statement: %s)", err, stmt)
		}
	}
	return nil
}

// StoreRecord upserts one analyzed video.
func (p *PostgresStore) StoreRecord(ctx context.Context, rec *models.VideoFeatureRecord) error {
	visualJSON, err := json.Marshal(rec.Visual)
	if err != nil {
		return fmt.Errorf("failed to marshal visual summary: %w", err)
	}
	audioJSON, err := json.Marshal(rec.Audio)
	if err != nil {
		return fmt.Errorf("failed to marshal audio summary: %w", err)
	}

	query := `
		INSERT INTO viralcast.video_features (video_filename, duration, social_media_content, audio_features)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_filename) DO UPDATE SET
			duration = EXCLUDED.duration,
			social_media_content = EXCLUDED.social_media_content,
			audio_features = EXCLUDED.audio_features,
			analyzed_at = CURRENT_TIMESTAMP
	`
	_, err = p.db.ExecContext(ctx, query, rec.VideoFilename, rec.Duration, visualJSON, audioJSON)
	return err
}

// StoreJob records a new batch run.
func (p *PostgresStore) StoreJob(ctx context.Context, jobID string, total int) error {
	query := `
		INSERT INTO viralcast.batch_jobs (job_id, status, total)
		VALUES ($1, 'running', $2)
		ON CONFLICT (job_id) DO UPDATE SET status = 'running', total = EXCLUDED.total
	`
	_, err := p.db.ExecContext(ctx, query, jobID, total)
	return err
}

// UpdateJob updates batch progress; terminal statuses stamp the
// completion time.
func (p *PostgresStore) UpdateJob(ctx context.Context, jobID, status string, processed, skipped int, errMsg string) error {
	query := `
		UPDATE viralcast.batch_jobs
		SET status = $2, processed = $3, skipped = $4, error = NULLIF($5, ''),
			completed_at = CASE WHEN $2 IN ('completed', 'failed') THEN CURRENT_TIMESTAMP ELSE completed_at END
		WHERE job_id = $1
	`
	_, err := p.db.ExecContext(ctx, query, jobID, status, processed, skipped, errMsg)
	return err
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
