package server

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"

	"spacetraveling/internal/domain"
	"spacetraveling/internal/pages"
)

type Pages interface {
	Get(ctx context.Context, slug string) (pages.Page, error)
	Lookup(slug string) pages.Page
}

type Renderer interface {
	RenderPost(w io.Writer, slug string, post *domain.PostDetail) error
	RenderLoading(w io.Writer, slug string) error
	RenderNotFound(w io.Writer, slug string) error
	RenderError(w io.Writer) error
}
