package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"spacetraveling/internal/domain"
)

func TestReadingTime(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	assert.Equal(t, 0, ReadingTime(nil))
	assert.Equal(t, 0, ReadingTime(&domain.PostDetail{}))

	post := &domain.PostDetail{Data: domain.PostDetailData{Content: []domain.ContentSection{
		{Heading: "two words", Body: []domain.RichTextBlock{{Text: words(198)}}},
	}}}
	assert.Equal(t, 1, ReadingTime(post))

	post.Data.Content = append(post.Data.Content, domain.ContentSection{
		Heading: "x",
		Body:    []domain.RichTextBlock{{Text: words(100)}, {Text: words(100)}},
	})
	assert.Equal(t, 3, ReadingTime(post))
}
