package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spacetraveling/internal/domain"
)

// MaxPageSize is the largest page the search endpoint serves.
const MaxPageSize = 100

// ErrConfiguration is returned by New when the endpoint or token is unusable.
var ErrConfiguration = errors.New("prismic: invalid client configuration")

// Config holds Prismic client configuration.
type Config struct {
	Endpoint       string
	AccessToken    string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client queries a Prismic repository over the REST API v2.
type Client struct {
	httpClient     *http.Client
	endpoint       string
	accessToken    string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// StatusError is a non-2xx response from the repository.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// New creates a client bound to one repository endpoint and access token.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is empty", ErrConfiguration)
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: endpoint %q is not an absolute http(s) URL", ErrConfiguration, cfg.Endpoint)
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is empty", ErrConfiguration)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:       endpoint,
		accessToken:    cfg.AccessToken,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "prismic"),
	}, nil
}

// Query runs a predicate query against the master ref.
func (c *Client) Query(ctx context.Context, q domain.Query) (*domain.QueryResponse, error) {
	ref, err := c.masterRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve master ref: %w", err)
	}

	params := url.Values{}
	params.Set("ref", ref)
	params.Set("q", EncodePredicates(q.Predicates))
	if len(q.Fetch) > 0 {
		params.Set("fetch", strings.Join(q.Fetch, ","))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(min(q.PageSize, MaxPageSize)))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var resp searchResponse
	if err := c.get(ctx, c.endpoint+"/documents/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	c.logger.Debug("query completed",
		"page", resp.Page,
		"total_pages", resp.TotalPages,
		"results", len(resp.Results),
	)

	return &domain.QueryResponse{
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
		Results:    resp.Results,
		NextPage:   resp.NextPage,
	}, nil
}

// GetByUID fetches the single document of docType whose uid matches.
func (c *Client) GetByUID(ctx context.Context, docType, uid string) (*domain.Document, error) {
	resp, err := c.Query(ctx, domain.Query{
		Predicates: []domain.Predicate{domain.At("my."+docType+".uid", uid)},
		PageSize:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%s %q: %w", docType, uid, domain.ErrNotFound)
	}
	return &resp.Results[0], nil
}

func (c *Client) masterRef(ctx context.Context) (string, error) {
	var api apiResponse
	if err := c.get(ctx, c.endpoint, url.Values{}, &api); err != nil {
		return "", err
	}
	for _, r := range api.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", errors.New("repository has no master ref")
}

func (c *Client) get(ctx context.Context, base string, params url.Values, out any) error {
	params.Set("access_token", c.accessToken)
	target := base + "?" + params.Encode()

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.doRequest(ctx, target, out)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}
		if attempt == c.maxAttempts || !retryable(err) {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if c.maxAttempts > 1 && retryable(err) {
		return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "spacetraveling/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, URL: req.URL.Path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

// retryable reports whether a failed request may succeed on a later attempt.
// Client errors are final. Transport errors, including a per-attempt timeout,
// are retried; the caller's context is checked separately.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	return true
}

// EncodePredicates renders predicates in the query language, e.g.
// [[at(document.type,"posts")]].
func EncodePredicates(predicates []domain.Predicate) string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, p := range predicates {
		sb.WriteString("[at(")
		sb.WriteString(p.Path)
		sb.WriteString(",")
		sb.WriteString(strconv.Quote(p.Value))
		sb.WriteString(")]")
	}
	sb.WriteString("]")
	return sb.String()
}
