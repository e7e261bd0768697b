package videostore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upsert-monster/internal/jobs"
)

// PostgresStore implements Store on a videos table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed video store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert inserts the video or updates it in place when the id exists.
func (s *PostgresStore) Upsert(ctx context.Context, video jobs.Video) error {
	query := `
		INSERT INTO videos (id, channel_id, snippet, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET channel_id = EXCLUDED.channel_id,
		    snippet = EXCLUDED.snippet,
		    status = EXCLUDED.status,
		    updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		video.ID, video.ChannelID, jsonParam(video.Snippet), jsonParam(video.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert video %s: %w", video.ID, err)
	}

	return nil
}

// jsonParam converts a raw JSON field to a jsonb-compatible parameter.
// lib/pq treats []byte as bytea, so JSON goes over as text; absent fields
// become SQL NULL.
func jsonParam(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
