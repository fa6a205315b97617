package render

import (
	"encoding/json"
	"html"
	"html/template"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/microcosm-cc/bluemonday"

	"spacetraveling/internal/domain"
)

var blockTags = map[string]string{
	"paragraph":    "p",
	"heading1":     "h1",
	"heading2":     "h2",
	"heading3":     "h3",
	"heading4":     "h4",
	"heading5":     "h5",
	"heading6":     "h6",
	"preformatted": "pre",
	"list-item":    "li",
	"o-list-item":  "li",
}

var listTags = map[string]string{
	"list-item":   "ul",
	"o-list-item": "ol",
}

var spanTags = map[string]string{
	"strong":    "strong",
	"em":        "em",
	"hyperlink": "a",
}

var richTextPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// RichText renders body blocks as sanitized HTML. Untyped blocks are paragraphs.
func RichText(blocks []domain.RichTextBlock) template.HTML {
	var sb strings.Builder
	openList := ""

	for _, block := range blocks {
		tag, ok := blockTags[block.Type]
		if !ok {
			tag = "p"
		}

		if list := listTags[block.Type]; list != openList {
			if openList != "" {
				sb.WriteString("</" + openList + ">")
			}
			if list != "" {
				sb.WriteString("<" + list + ">")
			}
			openList = list
		}

		switch block.Type {
		case "image":
			sb.WriteString(renderImage(block))
			continue
		case "embed":
			sb.WriteString(renderEmbed(block))
			continue
		}

		sb.WriteString("<" + tag + ">")
		sb.WriteString(renderInline(block.Text, block.Spans))
		sb.WriteString("</" + tag + ">")
	}
	if openList != "" {
		sb.WriteString("</" + openList + ">")
	}

	return template.HTML(richTextPolicy.Sanitize(sb.String()))
}

// renderInline wraps span ranges of text in inline tags. Spans that overlap
// without nesting are clipped to their enclosing span.
func renderInline(text string, spans []domain.Span) string {
	units := utf16.Encode([]rune(text))
	n := len(units)

	valid := make([]domain.Span, 0, len(spans))
	for _, sp := range spans {
		if _, ok := spanTags[sp.Type]; !ok {
			continue
		}
		if sp.Type == "hyperlink" && (sp.Data == nil || sp.Data.URL == "") {
			continue
		}
		sp.Start = max(sp.Start, 0)
		sp.End = min(sp.End, n)
		if sp.Start >= sp.End {
			continue
		}
		valid = append(valid, sp)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	var sb strings.Builder
	var stack []domain.Span
	next, pos := 0, 0

	for {
		for len(stack) > 0 && stack[len(stack)-1].End <= pos {
			sb.WriteString(closeSpan(stack[len(stack)-1]))
			stack = stack[:len(stack)-1]
		}
		for next < len(valid) && valid[next].Start == pos {
			sp := valid[next]
			next++
			if len(stack) > 0 && sp.End > stack[len(stack)-1].End {
				sp.End = stack[len(stack)-1].End
			}
			sb.WriteString(openSpan(sp))
			stack = append(stack, sp)
		}
		if pos >= n {
			break
		}

		end := n
		if next < len(valid) && valid[next].Start < end {
			end = valid[next].Start
		}
		if len(stack) > 0 && stack[len(stack)-1].End < end {
			end = stack[len(stack)-1].End
		}
		sb.WriteString(html.EscapeString(string(utf16.Decode(units[pos:end]))))
		pos = end
	}

	return sb.String()
}

func renderImage(block domain.RichTextBlock) string {
	src := block.StringField("url")
	if src == "" {
		return ""
	}
	return `<p><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(block.StringField("alt")) + `"></p>`
}

// renderEmbed links to the embedded resource. Provider markup is not trusted.
func renderEmbed(block domain.RichTextBlock) string {
	var oembed struct {
		EmbedURL string `json:"embed_url"`
		Title    string `json:"title"`
	}
	if raw, ok := block.Extra["oembed"]; ok {
		_ = json.Unmarshal(raw, &oembed)
	}
	if oembed.EmbedURL == "" {
		return ""
	}
	label := oembed.Title
	if label == "" {
		label = oembed.EmbedURL
	}
	return `<p><a href="` + html.EscapeString(oembed.EmbedURL) + `">` + html.EscapeString(label) + `</a></p>`
}

func openSpan(sp domain.Span) string {
	tag := spanTags[sp.Type]
	if tag == "a" {
		return `<a href="` + html.EscapeString(sp.Data.URL) + `">`
	}
	return "<" + tag + ">"
}

func closeSpan(sp domain.Span) string {
	return "</" + spanTags[sp.Type] + ">"
}
