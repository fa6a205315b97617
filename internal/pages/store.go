package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"spacetraveling/internal/domain"
	"spacetraveling/internal/service"
)

const defaultFetchTimeout = 30 * time.Second

type Options struct {
	// Revalidate is how long a generated page is served before it is
	// refreshed in the background. Not-found entries expire after the same
	// interval.
	Revalidate   time.Duration
	FetchTimeout time.Duration
	Archive      Archive
	Notifier     Notifier
	Metrics      *Metrics
	Now          func() time.Time
}

// Store holds generated detail pages and refreshes them with
// stale-while-revalidate semantics. At most one build and one revalidation
// run per slug at a time.
type Store struct {
	fetcher      Fetcher
	archive      Archive
	notifier     Notifier
	metrics      *Metrics
	revalidate   time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu           sync.RWMutex
	pages        map[string]Page
	revalidating map[string]bool

	builds singleflight.Group
	wg     sync.WaitGroup
}

func NewStore(fetcher Fetcher, opts Options, logger *slog.Logger) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Revalidate <= 0 {
		opts.Revalidate = service.RevalidateInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}

	return &Store{
		fetcher:      fetcher,
		archive:      opts.Archive,
		notifier:     opts.Notifier,
		metrics:      opts.Metrics,
		revalidate:   opts.Revalidate,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
		logger:       logger.With("component", "pages"),
		pages:        make(map[string]Page),
		revalidating: make(map[string]bool),
	}
}

// Seed marks slug as generated with post, as done by a full site build.
func (s *Store) Seed(slug string, post *domain.PostDetail) {
	s.set(slug, Page{State: StateReady, Post: post, GeneratedAt: s.now()})
}

// Get returns the page for slug, generating it first when it was never built.
// A stale page is returned immediately and refreshed in the background.
// Errors are returned only when a first build fails; nothing is cached then.
func (s *Store) Get(ctx context.Context, slug string) (Page, error) {
	if page, ok := s.cached(slug); ok {
		return page, nil
	}

	ch := s.builds.DoChan(slug, func() (any, error) {
		return s.build(context.WithoutCancel(ctx), slug)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Page{}, res.Err
		}
		return res.Val.(Page), nil
	case <-ctx.Done():
		return Page{}, ctx.Err()
	}
}

// Lookup returns the page for slug without waiting. An unbuilt slug gets a
// background build and is reported as Building.
func (s *Store) Lookup(slug string) Page {
	if page, ok := s.cached(slug); ok {
		return page
	}

	s.mu.Lock()
	page, ok := s.pages[slug]
	if ok && page.State != StateNotFound {
		s.mu.Unlock()
		return page
	}
	s.putLocked(slug, Page{State: StateBuilding})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err, _ := s.builds.Do(slug, func() (any, error) {
			return s.build(context.Background(), slug)
		})
		if err != nil {
			s.logger.Warn("background build failed", "slug", slug, "error", err)
		}
	}()

	return Page{State: StateBuilding}
}

// Wait blocks until background builds and revalidations finish.
func (s *Store) Wait() {
	s.wg.Wait()
}

// cached returns a page that can be served as is. Stale ready pages are
// served and queued for revalidation, expired not-found entries are not.
func (s *Store) cached(slug string) (Page, bool) {
	s.mu.RLock()
	page, ok := s.pages[slug]
	s.mu.RUnlock()
	if !ok {
		return Page{}, false
	}

	switch page.State {
	case StateReady:
		if s.expired(page) {
			s.revalidateAsync(slug)
		}
		return page, true
	case StateNotFound:
		return page, !s.expired(page)
	default:
		return Page{}, false
	}
}

func (s *Store) build(ctx context.Context, slug string) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	if page, ok := s.restore(ctx, slug); ok {
		return page, nil
	}

	post, err := s.fetcher.FetchPostByKey(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		page := Page{State: StateNotFound, GeneratedAt: s.now()}
		s.set(slug, page)
		s.discard(ctx, slug)
		s.metrics.build("not_found")
		s.logger.Info("page not found", "slug", slug)
		return page, nil
	case err != nil:
		s.forget(slug)
		s.metrics.build("error")
		return Page{}, fmt.Errorf("build page %q: %w", slug, err)
	}

	page := Page{State: StateReady, Post: post, GeneratedAt: s.now()}
	s.set(slug, page)
	s.metrics.build("ready")
	s.logger.Info("page built", "slug", slug)
	s.persist(ctx, slug, page, true)
	return page, nil
}

// restore serves the archived copy of slug, if any, and revalidates it when
// it is already stale.
func (s *Store) restore(ctx context.Context, slug string) (Page, bool) {
	if s.archive == nil {
		return Page{}, false
	}

	archived, err := s.archive.Get(ctx, slug)
	if err != nil {
		s.logger.Warn("failed to read archived page", "slug", slug, "error", err)
		return Page{}, false
	}
	if archived == nil {
		return Page{}, false
	}

	page := Page{State: StateReady, Post: &archived.Post, GeneratedAt: archived.FetchedAt}
	s.set(slug, page)
	s.metrics.build("archive")
	s.logger.Debug("page restored from archive", "slug", slug, "fetched_at", archived.FetchedAt)

	if s.expired(page) {
		s.revalidateAsync(slug)
	}
	return page, true
}

func (s *Store) revalidateAsync(slug string) {
	s.mu.Lock()
	if s.revalidating[slug] {
		s.mu.Unlock()
		return
	}
	s.revalidating[slug] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.revalidating, slug)
			s.mu.Unlock()
		}()
		s.revalidatePage(slug)
	}()
}

func (s *Store) revalidatePage(slug string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	post, err := s.fetcher.FetchPostByKey(ctx, slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.set(slug, Page{State: StateNotFound, GeneratedAt: s.now()})
		s.discard(ctx, slug)
		s.metrics.revalidation("not_found")
		s.logger.Info("page removed upstream", "slug", slug)
	case err != nil:
		s.metrics.revalidation("error")
		s.logger.Warn("revalidation failed, serving stale page", "slug", slug, "error", err)
	default:
		page := Page{State: StateReady, Post: post, GeneratedAt: s.now()}
		s.set(slug, page)
		s.metrics.revalidation("ok")
		s.logger.Debug("page revalidated", "slug", slug)
		s.persist(ctx, slug, page, false)
	}
}

// persist archives and announces a freshly fetched page. Failures are logged
// and never affect what is served.
func (s *Store) persist(ctx context.Context, slug string, page Page, isNew bool) {
	if s.archive != nil {
		if err := s.archive.Save(ctx, slug, page.Post, page.GeneratedAt); err != nil {
			s.logger.Warn("failed to archive page", "slug", slug, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, slug, page.Post, isNew); err != nil {
			s.logger.Warn("failed to publish page event", "slug", slug, "error", err)
		}
	}
}

// discard drops the archived copy of a post removed upstream so it is not
// restored once the not-found entry expires.
func (s *Store) discard(ctx context.Context, slug string) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Delete(ctx, slug); err != nil {
		s.logger.Warn("failed to delete archived page", "slug", slug, "error", err)
	}
}

func (s *Store) expired(page Page) bool {
	return s.now().Sub(page.GeneratedAt) >= s.revalidate
}

func (s *Store) set(slug string, page Page) {
	s.mu.Lock()
	s.putLocked(slug, page)
	s.mu.Unlock()
}

func (s *Store) putLocked(slug string, page Page) {
	var from *State
	if old, ok := s.pages[slug]; ok {
		from = &old.State
	}
	s.pages[slug] = page
	s.metrics.transition(from, &page.State)
}

// forget drops a slug whose first build failed so the next request retries.
func (s *Store) forget(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.pages[slug]
	if !ok || old.State != StateBuilding {
		return
	}
	delete(s.pages, slug)
	s.metrics.transition(&old.State, nil)
}
