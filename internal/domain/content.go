package domain

import (
	"bytes"
	"encoding/json"
	"maps"
	"strings"
)

// Post content is copied from the CMS without validating its shape. Known
// fields are decoded when they fit the model; everything else is kept as is.

type fieldDecoder func(raw json.RawMessage) bool

func decodeInto[T any](dst *T) fieldDecoder {
	return func(raw json.RawMessage) bool {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		*dst = v
		return true
	}
}

// splitFields decodes the known fields of a JSON object and returns the
// remaining ones. It reports false when data is not an object.
func splitFields(data []byte, decoders map[string]fieldDecoder) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, false
	}

	var extra map[string]json.RawMessage
	for key, raw := range fields {
		if decode, ok := decoders[key]; ok && !bytes.Equal(raw, []byte("null")) && decode(raw) {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[key] = raw
	}
	return extra, true
}

func mergeFields(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	maps.Copy(fields, extra)
	return json.Marshal(fields)
}

// UnmarshalJSON decodes data without failing on the shape of content. A
// content value that is not a list is dropped.
func (d *PostDetailData) UnmarshalJSON(data []byte) error {
	type plain PostDetailData
	var v struct {
		plain
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*d = PostDetailData(v.plain)
	d.Content = nil
	if len(v.Content) > 0 {
		decodeInto(&d.Content)(v.Content)
	}
	return nil
}

// UnmarshalJSON never fails. A section that is not an object decodes empty.
func (s *ContentSection) UnmarshalJSON(data []byte) error {
	var section ContentSection
	extra, ok := splitFields(data, map[string]fieldDecoder{
		"heading": func(raw json.RawMessage) bool {
			if decodeInto(&section.Heading)(raw) {
				return true
			}
			var blocks []RichTextBlock
			if err := json.Unmarshal(raw, &blocks); err == nil {
				section.Heading = PlainText(blocks)
			}
			return false
		},
		"body": decodeInto(&section.Body),
	})
	if !ok {
		*s = ContentSection{}
		return nil
	}

	section.Extra = extra
	*s = section
	return nil
}

func (s ContentSection) MarshalJSON() ([]byte, error) {
	type plain ContentSection
	return mergeFields(plain(s), s.Extra)
}

// UnmarshalJSON never fails. A block that is not an object decodes empty.
func (b *RichTextBlock) UnmarshalJSON(data []byte) error {
	var block RichTextBlock
	extra, ok := splitFields(data, map[string]fieldDecoder{
		"type":  decodeInto(&block.Type),
		"text":  decodeInto(&block.Text),
		"spans": decodeInto(&block.Spans),
	})
	if !ok {
		*b = RichTextBlock{}
		return nil
	}

	block.Extra = extra
	*b = block
	return nil
}

func (b RichTextBlock) MarshalJSON() ([]byte, error) {
	type plain RichTextBlock
	return mergeFields(plain(b), b.Extra)
}

// StringField returns the string value of an unmodelled field, or "".
func (b RichTextBlock) StringField(key string) string {
	var v string
	if raw, ok := b.Extra[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

func (d *SpanData) UnmarshalJSON(data []byte) error {
	var sd SpanData
	extra, ok := splitFields(data, map[string]fieldDecoder{
		"url":    decodeInto(&sd.URL),
		"target": decodeInto(&sd.Target),
	})
	if !ok {
		*d = SpanData{}
		return nil
	}

	sd.Extra = extra
	*d = sd
	return nil
}

func (d SpanData) MarshalJSON() ([]byte, error) {
	type plain SpanData
	return mergeFields(plain(d), d.Extra)
}

// PlainText joins the text of blocks with spaces.
func PlainText(blocks []RichTextBlock) string {
	texts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, " ")
}
