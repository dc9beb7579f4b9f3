package submission

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips any markup from free text typed by a driver.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// clean normalizes enum fields and strips markup from the others.
func clean(f Field, value string) string {
	if f.Enum {
		return Normalize(f.Name, value)
	}
	return cleanText(value)
}

func (s *Setup) normalize() {
	for _, f := range Fields {
		v := f.value(s)
		*v = clean(f, *v)
	}
}

// normalized returns a copy of p with cleaned values; p itself is not touched.
func (p Patch) normalized() Patch {
	for _, f := range Fields {
		if v := f.patch(&p); *v != nil {
			c := clean(f, **v)
			*v = &c
		}
	}
	return p
}
