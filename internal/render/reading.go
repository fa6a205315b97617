package render

import (
	"strings"

	"spacetraveling/internal/domain"
)

const wordsPerMinute = 200

// ReadingTime estimates minutes to read every heading and body text of post.
func ReadingTime(post *domain.PostDetail) int {
	if post == nil {
		return 0
	}

	words := 0
	for _, section := range post.Data.Content {
		words += len(strings.Fields(section.Heading))
		for _, block := range section.Body {
			words += len(strings.Fields(block.Text))
		}
	}

	return (words + wordsPerMinute - 1) / wordsPerMinute
}
