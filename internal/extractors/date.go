package extractors

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

// minDateLength rejects fragments like "2020" or "May 3".
const minDateLength = 7

// ParseDate parses a date string permissively and returns it in UTC.
// Short or unparseable input yields nil.
func ParseDate(value string) *time.Time {
	if utf8.RuneCountInString(value) < minDateLength {
		return nil
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		value = strings.TrimSpace(value[1 : len(value)-1])
	}
	if value == "" {
		return nil
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
