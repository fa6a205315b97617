package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"spacetraveling/internal/domain"
)

const (
	// PostsType is the CMS document type of blog posts.
	PostsType = "posts"

	// ListPageSize caps the listing page.
	ListPageSize = 20

	// EnumeratePageSize is the page size used to walk every post. It is the
	// largest page the CMS serves.
	EnumeratePageSize = 100

	// RevalidateInterval is how long a rendered detail page stays fresh.
	RevalidateInterval = 30 * time.Minute
)

// ListFetchFields restricts listing documents to the summary fields.
var ListFetchFields = []string{
	PostsType + ".title",
	PostsType + ".subtitle",
	PostsType + ".author",
}

// PostService runs the listing and detail pipelines against the CMS.
type PostService struct {
	cms    CMS
	logger *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(cms CMS, logger *slog.Logger) *PostService {
	return &PostService{
		cms:    cms,
		logger: logger.With("component", "posts"),
	}
}

// FetchPostsPage returns the first listing page in CMS order.
func (s *PostService) FetchPostsPage(ctx context.Context) (*domain.Pagination, error) {
	resp, err := s.cms.Query(ctx, domain.Query{
		Predicates: []domain.Predicate{domain.At("document.type", PostsType)},
		Fetch:      ListFetchFields,
		PageSize:   ListPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	docs := resp.Results
	if len(docs) > ListPageSize {
		docs = docs[:ListPageSize]
	}

	results := make([]domain.PostSummary, 0, len(docs))
	for _, doc := range docs {
		var data domain.PostSummaryData
		if err := decodeData(doc, &data); err != nil {
			return nil, err
		}

		results = append(results, domain.PostSummary{
			UID:                  doc.UID,
			FirstPublicationDate: doc.FirstPublicationDate,
			Data:                 data,
		})
	}

	s.logger.Debug("fetched posts page", "count", len(results), "has_next", resp.NextPage != nil)

	return &domain.Pagination{
		Results:  results,
		NextPage: resp.NextPage,
	}, nil
}

// EnumerateSlugs returns the uid of every post, walking all CMS pages.
func (s *PostService) EnumerateSlugs(ctx context.Context) ([]string, error) {
	var slugs []string

	for page := 1; ; page++ {
		resp, err := s.cms.Query(ctx, domain.Query{
			Predicates: []domain.Predicate{domain.At("document.type", PostsType)},
			PageSize:   EnumeratePageSize,
			Page:       page,
		})
		if err != nil {
			return nil, fmt.Errorf("query posts page %d: %w", page, err)
		}

		for _, doc := range resp.Results {
			slugs = append(slugs, doc.UID)
		}

		s.logger.Debug("enumerated page",
			"page", page,
			"slugs", len(resp.Results),
			"total", len(slugs),
		)

		if page >= resp.TotalPages || len(resp.Results) == 0 {
			break
		}
	}

	return slugs, nil
}

// FetchPostByKey returns the post whose uid is slug. A missing post yields an
// error matching domain.ErrNotFound.
func (s *PostService) FetchPostByKey(ctx context.Context, slug string) (*domain.PostDetail, error) {
	doc, err := s.cms.GetByUID(ctx, PostsType, slug)
	if err != nil {
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}

	var data domain.PostDetailData
	if err := decodeData(*doc, &data); err != nil {
		return nil, err
	}

	return &domain.PostDetail{
		FirstPublicationDate: doc.FirstPublicationDate,
		Data:                 data,
	}, nil
}

func decodeData(doc domain.Document, out any) error {
	if len(doc.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(doc.Data, out); err != nil {
		return fmt.Errorf("decode data of %q: %w", doc.UID, err)
	}
	return nil
}
