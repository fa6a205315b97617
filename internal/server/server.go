package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spacetraveling/internal/pages"
)

type Config struct {
	Addr      string
	OutputDir string
	// Revalidate is advertised to caches in s-maxage.
	Revalidate time.Duration
	// Placeholder serves a loading page instead of blocking on first builds.
	Placeholder bool
	Stylesheet  []byte
}

type Server struct {
	echo     *echo.Echo
	pages    Pages
	renderer Renderer
	config   Config
	logger   *slog.Logger
}

func New(pageStore Pages, renderer Renderer, gatherer prometheus.Gatherer, cfg Config, logger *slog.Logger) *Server {
	s := &Server{
		echo:     echo.New(),
		pages:    pageStore,
		renderer: renderer,
		config:   cfg,
		logger:   logger.With("component", "server"),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/healthz" || path == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				s.logger.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.logger.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/", s.handleHome)
	e.GET("/post/:slug", s.handlePost)
	e.GET("/styles.css", s.handleStylesheet)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server started", "addr", s.config.Addr)
	if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHome(c echo.Context) error {
	return c.File(filepath.Join(s.config.OutputDir, "index.html"))
}

func (s *Server) handleStylesheet(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", s.config.Stylesheet)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handlePost(c echo.Context) error {
	slug := c.Param("slug")

	var page pages.Page
	if s.config.Placeholder {
		page = s.pages.Lookup(slug)
	} else {
		var err error
		page, err = s.pages.Get(c.Request().Context(), slug)
		if err != nil {
			s.logger.Error("failed to build page", "slug", slug, "error", err)
			return s.render(c, http.StatusBadGateway, func(buf *bytes.Buffer) error {
				return s.renderer.RenderError(buf)
			})
		}
	}

	switch page.State {
	case pages.StateReady:
		c.Response().Header().Set(echo.HeaderCacheControl, s.cacheControl())
		return s.render(c, http.StatusOK, func(buf *bytes.Buffer) error {
			return s.renderer.RenderPost(buf, slug, page.Post)
		})
	case pages.StateBuilding:
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return s.render(c, http.StatusOK, func(buf *bytes.Buffer) error {
			return s.renderer.RenderLoading(buf, slug)
		})
	default:
		return s.render(c, http.StatusNotFound, func(buf *bytes.Buffer) error {
			return s.renderer.RenderNotFound(buf, slug)
		})
	}
}

func (s *Server) cacheControl() string {
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate", int(s.config.Revalidate.Seconds()))
}

// render executes fn into a buffer first so a template failure never leaves
// a half-written response.
func (s *Server) render(c echo.Context, status int, fn func(buf *bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}
