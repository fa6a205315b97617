package prismic

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetraveling/internal/domain"
)

type fakeRepository struct {
	server       *httptest.Server
	searches     atomic.Int32
	failSearches int32
	lastQuery    atomic.Value
	results      []map[string]any
}

func newFakeRepository(t *testing.T) *fakeRepository {
	t.Helper()
	repo := &fakeRepository{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{
			"refs": []map[string]any{
				{"id": "preview", "ref": "preview-ref", "isMasterRef": false},
				{"id": "master", "ref": "master-ref", "isMasterRef": true},
			},
		})
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		n := repo.searches.Add(1)
		repo.lastQuery.Store(r.URL.Query())
		if n <= repo.failSearches {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("ref") != "master-ref" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		results := repo.results
		if r.URL.Query().Get("q") == `[[at(my.posts.uid,"missing")]]` {
			results = nil
		}
		writeJSON(w, map[string]any{
			"page":        1,
			"total_pages": 3,
			"next_page":   "https://blog.cdn.prismic.io/api/v2/documents/search?page=2",
			"results":     results,
		})
	})

	repo.server = httptest.NewServer(mux)
	t.Cleanup(repo.server.Close)
	return repo
}

func (r *fakeRepository) query() url.Values {
	v, _ := r.lastQuery.Load().(url.Values)
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, endpoint string, attempts int) *Client {
	t.Helper()
	c, err := New(Config{
		Endpoint:       endpoint,
		AccessToken:    "token",
		Timeout:        5 * time.Second,
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}, testLogger())
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty endpoint", cfg: Config{AccessToken: "token"}},
		{name: "relative endpoint", cfg: Config{Endpoint: "blog.prismic.io", AccessToken: "token"}},
		{name: "unsupported scheme", cfg: Config{Endpoint: "ftp://blog.prismic.io", AccessToken: "token"}},
		{name: "empty token", cfg: Config{Endpoint: "https://blog.cdn.prismic.io/api/v2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, testLogger())
			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestEncodePredicates(t *testing.T) {
	got := EncodePredicates([]domain.Predicate{domain.At("document.type", "posts")})
	assert.Equal(t, `[[at(document.type,"posts")]]`, got)

	got = EncodePredicates([]domain.Predicate{
		domain.At("document.type", "posts"),
		domain.At("my.posts.uid", `say "hi"`),
	})
	assert.Equal(t, `[[at(document.type,"posts")][at(my.posts.uid,"say \"hi\"")]]`, got)
}

func TestQuery_SendsQueryAgainstMasterRef(t *testing.T) {
	repo := newFakeRepository(t)
	repo.results = []map[string]any{
		{
			"id":                     "X1",
			"uid":                    "a",
			"type":                   "posts",
			"first_publication_date": "2021-01-01T00:00:00+0000",
			"data":                   map[string]any{"title": "T1"},
		},
		{
			"id":                     "X2",
			"uid":                    "b",
			"type":                   "posts",
			"first_publication_date": nil,
			"data":                   map[string]any{"title": "T2"},
		},
	}
	client := newTestClient(t, repo.server.URL+"/api/v2/", 1)

	resp, err := client.Query(context.Background(), domain.Query{
		Predicates: []domain.Predicate{domain.At("document.type", "posts")},
		Fetch:      []string{"posts.title", "posts.subtitle"},
		PageSize:   20,
	})
	require.NoError(t, err)

	q := repo.query()
	assert.Equal(t, "master-ref", first(q["ref"]))
	assert.Equal(t, `[[at(document.type,"posts")]]`, first(q["q"]))
	assert.Equal(t, "posts.title,posts.subtitle", first(q["fetch"]))
	assert.Equal(t, "20", first(q["pageSize"]))
	assert.Empty(t, q["page"])
	assert.Equal(t, "token", first(q["access_token"]))

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a", resp.Results[0].UID)
	require.NotNil(t, resp.Results[0].FirstPublicationDate)
	assert.Equal(t, "2021-01-01T00:00:00+0000", *resp.Results[0].FirstPublicationDate)
	assert.Nil(t, resp.Results[1].FirstPublicationDate)
	assert.JSONEq(t, `{"title":"T1"}`, string(resp.Results[0].Data))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	require.NotNil(t, resp.NextPage)
}

func TestGetByUID_NotFound(t *testing.T) {
	repo := newFakeRepository(t)
	client := newTestClient(t, repo.server.URL+"/api/v2", 3)

	doc, err := client.GetByUID(context.Background(), "posts", "missing")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int32(1), repo.searches.Load(), "not found is not retried")
}

func TestGetByUID_ReturnsFirstResult(t *testing.T) {
	repo := newFakeRepository(t)
	repo.results = []map[string]any{{"uid": "hello", "type": "posts", "data": map[string]any{}}}
	client := newTestClient(t, repo.server.URL+"/api/v2", 1)

	doc, err := client.GetByUID(context.Background(), "posts", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.UID)
	assert.Equal(t, `[[at(my.posts.uid,"hello")]]`, first(repo.query()["q"]))
}

func TestQuery_RetriesServerErrors(t *testing.T) {
	repo := newFakeRepository(t)
	repo.failSearches = 2
	client := newTestClient(t, repo.server.URL+"/api/v2", 3)

	_, err := client.Query(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), repo.searches.Load())
}

func TestQuery_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := newFakeRepository(t)
	repo.failSearches = 10
	client := newTestClient(t, repo.server.URL+"/api/v2", 2)

	_, err := client.Query(context.Background(), domain.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, int32(2), repo.searches.Load())
}

func TestQuery_RetriesAttemptTimeouts(t *testing.T) {
	var searches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"refs": []map[string]any{{"ref": "master-ref", "isMasterRef": true}}})
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		if searches.Add(1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		writeJSON(w, map[string]any{"page": 1, "total_pages": 1, "results": []any{}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := New(Config{
		Endpoint:       server.URL + "/api/v2",
		AccessToken:    "token",
		Timeout:        100 * time.Millisecond,
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}, testLogger())
	require.NoError(t, err)

	_, err = c.Query(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), searches.Load())
}

func TestQuery_DoesNotRetryCanceledCalls(t *testing.T) {
	repo := newFakeRepository(t)
	repo.failSearches = 10
	client := newTestClient(t, repo.server.URL+"/api/v2", 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Query(ctx, domain.Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), repo.searches.Load())
}

func TestQuery_DoesNotRetryClientErrors(t *testing.T) {
	repo := newFakeRepository(t)
	c, err := New(Config{
		Endpoint:    repo.server.URL + "/api/v2",
		AccessToken: "wrong",
		MaxAttempts: 3,
	}, testLogger())
	require.NoError(t, err)

	_, err = c.Query(context.Background(), domain.Query{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
	assert.Contains(t, err.Error(), "resolve master ref")
	assert.Equal(t, int32(0), repo.searches.Load())
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{initialBackoff: time.Second, maxBackoff: 5 * time.Second}

	assert.Equal(t, time.Second, c.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, c.calculateBackoff(2))
	assert.Equal(t, 4*time.Second, c.calculateBackoff(3))
	assert.Equal(t, 5*time.Second, c.calculateBackoff(4))
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
