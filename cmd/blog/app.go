package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"spacetraveling/internal/cms/prismic"
	"spacetraveling/internal/config"
	"spacetraveling/internal/pages"
	"spacetraveling/internal/publisher"
	"spacetraveling/internal/render"
	"spacetraveling/internal/service"
	"spacetraveling/internal/site"
	"spacetraveling/internal/storage/postgres"
)

// app holds the components shared by the build and serve commands.
type app struct {
	renderer *render.Renderer
	registry *prometheus.Registry
	store    *pages.Store
	builder  *site.Builder
	closers  []func() error
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := prismic.New(prismic.Config{
		Endpoint:       cfg.CMS.Endpoint,
		AccessToken:    cfg.CMS.AccessToken,
		Timeout:        cfg.CMS.Timeout,
		MaxAttempts:    cfg.CMS.Retry.MaxAttempts,
		InitialBackoff: cfg.CMS.Retry.InitialBackoff,
		MaxBackoff:     cfg.CMS.Retry.MaxBackoff,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create cms client: %w", err)
	}
	posts := service.NewPostService(client, logger)

	location, err := time.LoadLocation(cfg.Site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	dates, err := render.NewDateFormatter(cfg.Site.Locale, location)
	if err != nil {
		return nil, fmt.Errorf("create date formatter: %w", err)
	}
	a.renderer, err = render.New(render.Options{SiteTitle: cfg.Site.Title, Dates: dates})
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	pageOpts := pages.Options{
		Revalidate:   cfg.Site.Revalidate,
		FetchTimeout: 2 * time.Duration(cfg.CMS.Retry.MaxAttempts) * cfg.CMS.Timeout,
		Metrics:      pages.NewMetrics(a.registry),
	}
	var siteOpts site.Options

	if cfg.Database.Enabled() {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

		archive := postgres.NewPostArchive(db)
		pageOpts.Archive = archive
		siteOpts.Archive = archive
		siteOpts.BuildState = postgres.NewBuildStateStore(db)
		siteOpts.TxManager = postgres.NewTransactionManager(db)
	}

	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rabbitMQ.Close)

		pageOpts.Notifier = rabbitMQ
		siteOpts.Notifier = rabbitMQ
	}

	a.store = pages.NewStore(posts, pageOpts, logger)
	siteOpts.Seeder = a.store

	a.builder = site.NewBuilder(posts, a.renderer, site.Config{
		Name:        cfg.Site.Title,
		OutputDir:   cfg.Site.OutputDir,
		Concurrency: cfg.Site.BuildConcurrency,
		Stylesheet:  render.Stylesheet(),
	}, siteOpts, logger)

	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
