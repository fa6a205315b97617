package pages

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"spacetraveling/internal/domain"
)

// Fetcher resolves one post by slug.
type Fetcher interface {
	FetchPostByKey(ctx context.Context, slug string) (*domain.PostDetail, error)
}

// Archive persists the last good version of each page.
type Archive interface {
	Save(ctx context.Context, slug string, post *domain.PostDetail, fetchedAt time.Time) error
	Get(ctx context.Context, slug string) (*domain.ArchivedPost, error)
	Delete(ctx context.Context, slug string) error
}

// Notifier announces pages that were built or revalidated.
type Notifier interface {
	Publish(ctx context.Context, slug string, post *domain.PostDetail, isNew bool) error
}
