package site

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"
	"time"

	"spacetraveling/internal/domain"
)

type Posts interface {
	FetchPostsPage(ctx context.Context) (*domain.Pagination, error)
	EnumerateSlugs(ctx context.Context) ([]string, error)
	FetchPostByKey(ctx context.Context, slug string) (*domain.PostDetail, error)
}

type Renderer interface {
	RenderHome(w io.Writer, page *domain.Pagination) error
	RenderPost(w io.Writer, slug string, post *domain.PostDetail) error
}

// Seeder receives every page a build generated.
type Seeder interface {
	Seed(slug string, post *domain.PostDetail)
}

type PostArchive interface {
	Save(ctx context.Context, slug string, post *domain.PostDetail, fetchedAt time.Time) error
	Delete(ctx context.Context, slug string) error
	ListSlugs(ctx context.Context, slugs []string) (map[string]bool, error)
}

type BuildStateStore interface {
	Get(ctx context.Context, site string) (*domain.BuildState, error)
	Update(ctx context.Context, state *domain.BuildState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Publish(ctx context.Context, slug string, post *domain.PostDetail, isNew bool) error
}
