package render

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// timestampLayouts lists the layouts CMS timestamps arrive in. The CMS omits
// the colon in the zone offset, so plain RFC 3339 is only the fallback.
var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// Supported month tables. The first entry is the fallback for unknown locales.
var (
	monthLocales = []language.Tag{
		language.English,
		language.BrazilianPortuguese,
		language.Spanish,
	}
	monthAbbreviations = [][12]string{
		{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	}
	monthMatcher = language.NewMatcher(monthLocales)
)

// DateFormatter renders publication dates as "dd LLL yyyy", lowercased.
// It is safe for concurrent use.
type DateFormatter struct {
	tag       language.Tag
	months    [12]string
	monthsTag language.Tag
	location  *time.Location
}

func NewDateFormatter(locale string, location *time.Location) (*DateFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	if location == nil {
		location = time.UTC
	}

	_, idx, _ := monthMatcher.Match(tag)

	return &DateFormatter{
		tag:       tag,
		months:    monthAbbreviations[idx],
		monthsTag: monthLocales[idx],
		location:  location,
	}, nil
}

// Tag returns the configured locale.
func (f *DateFormatter) Tag() language.Tag {
	return f.tag
}

// Format renders a CMS timestamp. Absent or unparseable input renders empty.
func (f *DateFormatter) Format(timestamp *string) string {
	if timestamp == nil {
		return ""
	}
	t, ok := ParseTimestamp(*timestamp)
	if !ok {
		return ""
	}
	t = t.In(f.location)
	// A Caser holds state, so each call gets its own.
	return cases.Lower(f.monthsTag).String(fmt.Sprintf("%02d %s %d", t.Day(), f.months[t.Month()-1], t.Year()))
}

func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
