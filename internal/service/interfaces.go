package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"spacetraveling/internal/domain"
)

// CMS is the remote query service the pipelines read from.
type CMS interface {
	Query(ctx context.Context, q domain.Query) (*domain.QueryResponse, error)
	GetByUID(ctx context.Context, docType, uid string) (*domain.Document, error)
}
