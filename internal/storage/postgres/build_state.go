package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"spacetraveling/internal/domain"
)

type BuildStateStore struct {
	db *sqlx.DB
}

func NewBuildStateStore(db *sqlx.DB) *BuildStateStore {
	return &BuildStateStore{db: db}
}

func (s *BuildStateStore) Get(ctx context.Context, site string) (*domain.BuildState, error) {
	var state domain.BuildState
	query := `
		SELECT id, site, last_built_at, last_pages, total_builds
		FROM build_state
		WHERE site = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, site)
	if errors.Is(err, sql.ErrNoRows) {
		// Never built
		return &domain.BuildState{Site: site}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *BuildStateStore) Update(ctx context.Context, state *domain.BuildState) error {
	query := `
		INSERT INTO build_state (site, last_built_at, last_pages, total_builds)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (site) DO UPDATE SET
			last_built_at = EXCLUDED.last_built_at,
			last_pages = EXCLUDED.last_pages,
			total_builds = EXCLUDED.total_builds`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		state.Site,
		state.LastBuiltAt,
		state.LastPages,
		state.TotalBuilds,
	)
	return err
}
