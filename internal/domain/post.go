package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when the CMS holds no document for a key.
var ErrNotFound = errors.New("document not found")

// Document is a CMS record as returned by the remote query service.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

type PostSummary struct {
	UID                  string          `json:"uid,omitempty"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	Data                 PostSummaryData `json:"data"`
}

type PostSummaryData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

// Pagination is one listing page. NextPage is carried through as returned
// by the CMS and is never followed.
type Pagination struct {
	Results  []PostSummary `json:"results"`
	NextPage *string       `json:"next_page"`
}

type PostDetail struct {
	FirstPublicationDate *string        `json:"first_publication_date"`
	Data                 PostDetailData `json:"data"`
}

type PostDetailData struct {
	Title   string           `json:"title"`
	Banner  Banner           `json:"banner"`
	Author  string           `json:"author"`
	Content []ContentSection `json:"content"`
}

type Banner struct {
	URL string `json:"url"`
}

// ContentSection is one heading with its body. Section order is authoritative.
// Heading holds the plain text of the heading whatever its shape. Fields that
// are not modelled, or whose shape differs from the model, are kept verbatim
// in Extra and written back on marshal.
type ContentSection struct {
	Heading string                     `json:"heading"`
	Body    []RichTextBlock            `json:"body"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// RichTextBlock is a single rich text block. Type and Spans are optional.
// Block kinds without text, such as images and embeds, carry their fields in
// Extra.
type RichTextBlock struct {
	Type  string                     `json:"type,omitempty"`
	Text  string                     `json:"text"`
	Spans []Span                     `json:"spans,omitempty"`
	Extra map[string]json.RawMessage `json:"-"`
}

// Span marks inline formatting over Text. Start and End count UTF-16 code units.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

type SpanData struct {
	URL    string                     `json:"url,omitempty"`
	Target string                     `json:"target,omitempty"`
	Extra  map[string]json.RawMessage `json:"-"`
}

// ArchivedPost is a post detail persisted after a successful fetch.
type ArchivedPost struct {
	Slug      string
	Post      PostDetail
	FetchedAt time.Time
}
