package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacetraveling/internal/domain"
	"spacetraveling/internal/testutil"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	dates, err := NewDateFormatter("pt-BR", time.UTC)
	require.NoError(t, err)
	r, err := New(Options{SiteTitle: "spacetraveling", Dates: dates})
	require.NoError(t, err)
	return r
}

func TestNew_RequiresDateFormatter(t *testing.T) {
	_, err := New(Options{SiteTitle: "x"})
	assert.Error(t, err)
}

func TestRenderHome(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer

	err := r.RenderHome(&buf, &domain.Pagination{Results: []domain.PostSummary{
		{
			UID:                  "como-utilizar-hooks",
			FirstPublicationDate: testutil.Ptr("2021-03-15T19:25:28+0000"),
			Data:                 domain.PostSummaryData{Title: "Como utilizar Hooks", Subtitle: "Pensando em sincronização", Author: "Joseph Oliveira"},
		},
		{
			UID:  "criando-um-app",
			Data: domain.PostSummaryData{Title: "Criando um app CRA do zero", Subtitle: "Tudo sobre", Author: "Danilo Vieira"},
		},
	}})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `<html lang="pt-BR">`)
	assert.Contains(t, html, `href="/post/como-utilizar-hooks"`)
	assert.Contains(t, html, "Como utilizar Hooks")
	assert.Contains(t, html, "Pensando em sincronização")
	assert.Contains(t, html, "<time>15 mar 2021</time>")
	assert.Contains(t, html, "Joseph Oliveira")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("como-utilizar-hooks")), bytes.Index(buf.Bytes(), []byte("criando-um-app")))
	assert.Contains(t, html, "<title>spacetraveling</title>")
}

func TestRenderHome_Empty(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer

	require.NoError(t, r.RenderHome(&buf, nil))
	assert.Contains(t, buf.String(), "Nenhum post publicado.")
}

func TestRenderPost(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer

	post := &domain.PostDetail{
		FirstPublicationDate: testutil.Ptr("2021-03-25T19:25:28+0000"),
		Data: domain.PostDetailData{
			Title:  "Criando um app <CRA>",
			Banner: domain.Banner{URL: "https://images.prismic.io/banner.png"},
			Author: "Danilo Vieira",
			Content: []domain.ContentSection{
				{Heading: "Primeira", Body: []domain.RichTextBlock{{Type: "paragraph", Text: "corpo um", Spans: []domain.Span{{Start: 0, End: 5, Type: "strong"}}}}},
				{Heading: "Segunda", Body: []domain.RichTextBlock{{Text: "corpo dois"}}},
			},
		},
	}

	require.NoError(t, r.RenderPost(&buf, "criando-um-app", post))

	html := buf.String()
	assert.Contains(t, html, `<img src="https://images.prismic.io/banner.png"`)
	assert.Contains(t, html, "Criando um app &lt;CRA&gt;")
	assert.Contains(t, html, "<title>Criando um app &lt;CRA&gt; | spacetraveling</title>")
	assert.Contains(t, html, "<time>25 mar 2021</time>")
	assert.Contains(t, html, "1 min")
	assert.Contains(t, html, "<p><strong>corpo</strong> um</p>")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Primeira")), bytes.Index(buf.Bytes(), []byte("Segunda")))
}

func TestRenderPost_NilPost(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer

	assert.Error(t, r.RenderPost(&buf, "x", nil))
}

func TestRenderFallbackPages(t *testing.T) {
	r := newTestRenderer(t)

	var loading, notFound, failed bytes.Buffer
	require.NoError(t, r.RenderLoading(&loading, "x"))
	require.NoError(t, r.RenderNotFound(&notFound, "x"))
	require.NoError(t, r.RenderError(&failed))

	assert.Contains(t, loading.String(), "Carregando...")
	assert.Contains(t, loading.String(), `http-equiv="refresh"`)
	assert.Contains(t, notFound.String(), "Post não encontrado")
	assert.NotContains(t, notFound.String(), "refresh")
	assert.Contains(t, failed.String(), "Não foi possível carregar a página")
}

func TestStylesheet(t *testing.T) {
	assert.Contains(t, string(Stylesheet()), ".posts")
}
