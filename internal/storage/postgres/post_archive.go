package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"spacetraveling/internal/domain"
)

// PostArchive keeps the last fetched version of every detail page.
type PostArchive struct {
	db *sqlx.DB
}

func NewPostArchive(db *sqlx.DB) *PostArchive {
	return &PostArchive{db: db}
}

type archiveRow struct {
	Slug      string    `db:"slug"`
	Post      []byte    `db:"post"`
	FetchedAt time.Time `db:"fetched_at"`
}

// Save upserts post under slug. An existing row is only replaced by a newer
// fetch.
func (s *PostArchive) Save(ctx context.Context, slug string, post *domain.PostDetail, fetchedAt time.Time) error {
	body, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	query := `
		INSERT INTO post_archive (slug, post, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET
			post = EXCLUDED.post,
			fetched_at = EXCLUDED.fetched_at
		WHERE post_archive.fetched_at < EXCLUDED.fetched_at`

	_, err = GetExecutor(ctx, s.db).ExecContext(ctx, query, slug, string(body), fetchedAt)
	return err
}

// Get returns the archived post for slug, or nil when it was never archived.
func (s *PostArchive) Get(ctx context.Context, slug string) (*domain.ArchivedPost, error) {
	var row archiveRow
	query := `SELECT slug, post, fetched_at FROM post_archive WHERE slug = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	archived := &domain.ArchivedPost{
		Slug:      row.Slug,
		FetchedAt: row.FetchedAt,
	}
	if err := json.Unmarshal(row.Post, &archived.Post); err != nil {
		return nil, fmt.Errorf("unmarshal archived post %q: %w", slug, err)
	}
	return archived, nil
}

// Delete removes the archived post for slug. Deleting a missing slug is not
// an error.
func (s *PostArchive) Delete(ctx context.Context, slug string) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM post_archive WHERE slug = $1`, slug)
	return err
}

// ListSlugs reports which of slugs are archived.
func (s *PostArchive) ListSlugs(ctx context.Context, slugs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(slugs) == 0 {
		return result, nil
	}

	query := `SELECT slug FROM post_archive WHERE slug = ANY($1)`

	var found []string
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &found, query, pq.Array(slugs)); err != nil {
		return nil, err
	}

	for _, slug := range found {
		result[slug] = true
	}
	return result, nil
}
