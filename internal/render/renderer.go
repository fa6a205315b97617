package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"spacetraveling/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

const baseLayout = "base.html"

var pageLayouts = []string{"home.html", "post.html", "loading.html", "notfound.html", "error.html"}

// Options configures site-wide rendering.
type Options struct {
	SiteTitle string
	Dates     *DateFormatter
}

// Renderer executes the page layouts. It is safe for concurrent use.
type Renderer struct {
	siteTitle string
	lang      string
	pages     map[string]*template.Template
}

// view is the data every layout executes against.
type view struct {
	Lang      string
	SiteTitle string
	Title     string
	Slug      string
	Page      *domain.Pagination
	Post      *domain.PostDetail
}

func New(opts Options) (*Renderer, error) {
	if opts.Dates == nil {
		return nil, fmt.Errorf("date formatter is required")
	}

	funcs := template.FuncMap{
		"formatDate":  opts.Dates.Format,
		"readingTime": ReadingTime,
		"richText":    RichText,
	}

	pages := make(map[string]*template.Template, len(pageLayouts))
	for _, name := range pageLayouts {
		t, err := template.New(baseLayout).Funcs(funcs).ParseFS(templatesFS,
			"templates/"+baseLayout,
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{
		siteTitle: opts.SiteTitle,
		lang:      opts.Dates.Tag().String(),
		pages:     pages,
	}, nil
}

func (r *Renderer) RenderHome(w io.Writer, page *domain.Pagination) error {
	if page == nil {
		page = &domain.Pagination{}
	}
	return r.execute(w, "home.html", view{Page: page})
}

func (r *Renderer) RenderPost(w io.Writer, slug string, post *domain.PostDetail) error {
	if post == nil {
		return fmt.Errorf("render post %q: nil post", slug)
	}
	return r.execute(w, "post.html", view{Title: post.Data.Title, Slug: slug, Post: post})
}

// RenderLoading writes the placeholder served while a page is first built.
func (r *Renderer) RenderLoading(w io.Writer, slug string) error {
	return r.execute(w, "loading.html", view{Slug: slug})
}

func (r *Renderer) RenderNotFound(w io.Writer, slug string) error {
	return r.execute(w, "notfound.html", view{Title: "404", Slug: slug})
}

func (r *Renderer) RenderError(w io.Writer) error {
	return r.execute(w, "error.html", view{})
}

func (r *Renderer) execute(w io.Writer, layout string, v view) error {
	v.Lang = r.lang
	v.SiteTitle = r.siteTitle
	if err := r.pages[layout].ExecuteTemplate(w, baseLayout, v); err != nil {
		return fmt.Errorf("execute %s: %w", layout, err)
	}
	return nil
}

// Stylesheet returns the site stylesheet.
func Stylesheet() []byte {
	data, err := templatesFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil
	}
	return data
}
