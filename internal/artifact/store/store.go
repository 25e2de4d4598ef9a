package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

// Store keeps artifacts in Postgres so every API replica sees the same documents.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func New(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

const schema = `
	CREATE TABLE IF NOT EXISTS invoice_artifacts (
		key          TEXT PRIMARY KEY,
		content      BYTEA NOT NULL,
		content_type TEXT NOT NULL,
		page_format  TEXT NOT NULL,
		filename     TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		saved_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at   TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS invoice_artifacts_saved_at_idx ON invoice_artifacts (saved_at DESC);
`

// Migrate creates the artifacts table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating artifacts table: %w", err)
	}

	return nil
}

func (s *Store) Save(ctx context.Context, a *artifact.Artifact) error {
	var expiresAt *time.Time
	if s.ttl > 0 {
		expiresAt = new(time.Now().Add(s.ttl))
	}

	query := `
		INSERT INTO invoice_artifacts (key, content, content_type, page_format, filename, created_at, saved_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, clock_timestamp(), $7)
		ON CONFLICT (key) DO UPDATE SET
			content = EXCLUDED.content,
			content_type = EXCLUDED.content_type,
			page_format = EXCLUDED.page_format,
			filename = EXCLUDED.filename,
			created_at = EXCLUDED.created_at,
			saved_at = EXCLUDED.saved_at,
			expires_at = EXCLUDED.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		a.Key,
		a.Content,
		a.ContentType,
		a.PageFormat,
		a.Filename,
		a.CreatedAt,
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM invoice_artifacts WHERE expires_at IS NOT NULL AND expires_at < NOW()`,
	); err != nil {
		return fmt.Errorf("purging expired artifacts: %w", err)
	}

	return nil
}

const selectArtifactColumns = `key, content, content_type, page_format, filename, created_at`

func (s *Store) Load(ctx context.Context, key string) (*artifact.Artifact, error) {
	var row *sql.Row

	if key == artifact.Latest {
		row = s.db.QueryRowContext(ctx, `SELECT `+selectArtifactColumns+`
			FROM invoice_artifacts
			WHERE expires_at IS NULL OR expires_at > NOW()
			ORDER BY saved_at DESC
			LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT `+selectArtifactColumns+`
			FROM invoice_artifacts
			WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`, key)
	}

	var a artifact.Artifact
	if err := row.Scan(&a.Key, &a.Content, &a.ContentType, &a.PageFormat, &a.Filename, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, artifact.ErrNotFound
		}

		return nil, fmt.Errorf("loading artifact: %w", err)
	}

	return &a, nil
}

var _ artifact.Store = (*Store)(nil)
