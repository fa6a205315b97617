package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"spacetraveling/internal/domain"
)

type Config struct {
	// Name identifies the site in the build state table.
	Name        string
	OutputDir   string
	Concurrency int
	Stylesheet  []byte
}

// Options carries the optional collaborators of a build.
type Options struct {
	Seeder     Seeder
	Archive    PostArchive
	BuildState BuildStateStore
	TxManager  TransactionManager
	Notifier   Notifier
}

type Builder struct {
	posts    Posts
	renderer Renderer
	config   Config
	opts     Options
	logger   *slog.Logger
}

func NewBuilder(posts Posts, renderer Renderer, cfg Config, opts Options, logger *slog.Logger) *Builder {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Builder{
		posts:    posts,
		renderer: renderer,
		config:   cfg,
		opts:     opts,
		logger:   logger.With("component", "builder"),
	}
}

type builtPage struct {
	slug string
	post *domain.PostDetail
}

// Build generates the listing and every detail page into the output
// directory. Pages are written to a staging directory that replaces the
// output only once everything rendered, so a failed build leaves the
// previous output in place.
func (b *Builder) Build(ctx context.Context) (*domain.BuildStats, error) {
	startTime := time.Now()
	b.logger.Info("starting build", "output_dir", b.config.OutputDir, "concurrency", b.config.Concurrency)

	listing, err := b.posts.FetchPostsPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch posts page: %w", err)
	}

	slugs, err := b.posts.EnumerateSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate slugs: %w", err)
	}

	pages, removed, err := b.fetchPages(ctx, slugs)
	if err != nil {
		return nil, err
	}

	stats := &domain.BuildStats{
		Listed:  len(listing.Results),
		Slugs:   len(slugs),
		Built:   len(pages),
		Skipped: len(slugs) - len(pages),
	}

	if err := b.write(listing, pages); err != nil {
		return nil, err
	}

	fetchedAt := time.Now()
	existing, err := b.record(ctx, pages, removed, fetchedAt)
	if err != nil {
		return stats, fmt.Errorf("record build: %w", err)
	}

	if b.opts.Seeder != nil {
		for _, p := range pages {
			b.opts.Seeder.Seed(p.slug, p.post)
		}
	}

	b.announce(ctx, pages, existing)

	stats.Duration = time.Since(startTime)

	b.logger.Info("build completed",
		"listed", stats.Listed,
		"slugs", stats.Slugs,
		"built", stats.Built,
		"skipped", stats.Skipped,
		"duration", stats.Duration,
	)

	return stats, nil
}

// fetchPages resolves every slug concurrently. Slugs that disappeared since
// enumeration are skipped and returned as removed; any other failure aborts
// the build.
func (b *Builder) fetchPages(ctx context.Context, slugs []string) ([]builtPage, []string, error) {
	results := make([]*domain.PostDetail, len(slugs))
	missing := make([]bool, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Concurrency)

	for i, slug := range slugs {
		if slug == "" {
			b.logger.Warn("skipping post without uid")
			continue
		}
		i, slug := i, slug
		g.Go(func() error {
			post, err := b.posts.FetchPostByKey(gctx, slug)
			if errors.Is(err, domain.ErrNotFound) {
				b.logger.Warn("post disappeared during build", "slug", slug)
				missing[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("fetch post %q: %w", slug, err)
			}
			results[i] = post
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	pages := make([]builtPage, 0, len(slugs))
	var removed []string
	for i, post := range results {
		switch {
		case post != nil:
			pages = append(pages, builtPage{slug: slugs[i], post: post})
		case missing[i]:
			removed = append(removed, slugs[i])
		}
	}

	return pages, removed, nil
}

func (b *Builder) write(listing *domain.Pagination, pages []builtPage) error {
	out := filepath.Clean(b.config.OutputDir)
	staging := out + ".next"

	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clean staging dir: %w", err)
	}

	var buf bytes.Buffer
	if err := b.renderer.RenderHome(&buf, listing); err != nil {
		return fmt.Errorf("render home: %w", err)
	}
	if err := writeFile(filepath.Join(staging, "index.html"), buf.Bytes()); err != nil {
		return err
	}

	for _, p := range pages {
		buf.Reset()
		if err := b.renderer.RenderPost(&buf, p.slug, p.post); err != nil {
			return fmt.Errorf("render post %q: %w", p.slug, err)
		}
		if err := writeFile(filepath.Join(staging, "post", p.slug, "index.html"), buf.Bytes()); err != nil {
			return err
		}
	}

	if err := writeFile(filepath.Join(staging, "styles.css"), b.config.Stylesheet); err != nil {
		return err
	}

	return b.swap(staging, out)
}

// swap moves staging into place of out. The previous output is set aside
// rather than removed first so out stays servable until the rename.
func (b *Builder) swap(staging, out string) error {
	previous := out + ".prev"
	if err := os.RemoveAll(previous); err != nil {
		return fmt.Errorf("clean previous output dir: %w", err)
	}
	if err := os.Rename(out, previous); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("set aside output dir: %w", err)
	}
	if err := os.Rename(staging, out); err != nil {
		_ = os.Rename(previous, out)
		return fmt.Errorf("publish output dir: %w", err)
	}
	if err := os.RemoveAll(previous); err != nil {
		b.logger.Warn("failed to remove previous output", "dir", previous, "error", err)
	}
	return nil
}

// record archives the built pages, drops the removed ones and stores the
// build state in one transaction. It returns which slugs were archived before
// this build.
func (b *Builder) record(ctx context.Context, pages []builtPage, removed []string, fetchedAt time.Time) (map[string]bool, error) {
	if b.opts.Archive == nil && b.opts.BuildState == nil {
		return nil, nil
	}

	var existing map[string]bool
	if b.opts.Archive != nil {
		slugs := make([]string, len(pages))
		for i, p := range pages {
			slugs[i] = p.slug
		}
		var err error
		existing, err = b.opts.Archive.ListSlugs(ctx, slugs)
		if err != nil {
			return nil, fmt.Errorf("list archived slugs: %w", err)
		}
	}

	err := b.withTransaction(ctx, func(txCtx context.Context) error {
		if b.opts.Archive != nil {
			for _, p := range pages {
				if err := b.opts.Archive.Save(txCtx, p.slug, p.post, fetchedAt); err != nil {
					return fmt.Errorf("archive post %q: %w", p.slug, err)
				}
			}
			for _, slug := range removed {
				if err := b.opts.Archive.Delete(txCtx, slug); err != nil {
					return fmt.Errorf("delete archived post %q: %w", slug, err)
				}
			}
		}

		if b.opts.BuildState != nil {
			state, err := b.opts.BuildState.Get(txCtx, b.config.Name)
			if err != nil {
				return fmt.Errorf("get build state: %w", err)
			}
			state.Site = b.config.Name
			state.LastBuiltAt = fetchedAt
			state.LastPages = int64(len(pages))
			state.TotalBuilds++
			if err := b.opts.BuildState.Update(txCtx, state); err != nil {
				return fmt.Errorf("update build state: %w", err)
			}
		}

		return nil
	})

	return existing, err
}

func (b *Builder) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.opts.TxManager == nil {
		return fn(ctx)
	}
	return b.opts.TxManager.WithTransaction(ctx, fn)
}

// announce publishes an event per built page. Publishing is best effort.
func (b *Builder) announce(ctx context.Context, pages []builtPage, existing map[string]bool) {
	if b.opts.Notifier == nil {
		return
	}

	published := 0
	for _, p := range pages {
		if err := b.opts.Notifier.Publish(ctx, p.slug, p.post, !existing[p.slug]); err != nil {
			b.logger.Warn("failed to publish page event", "slug", p.slug, "error", err)
			continue
		}
		published++
	}

	b.logger.Debug("published page events", "count", published)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
