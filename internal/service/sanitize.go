package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"GameNightwebserver/internal/domain"
)

var plainText = bluemonday.StrictPolicy()

// cleanText strips markup and control characters and trims the result.
// bluemonday escapes entities on output, so they are decoded back to plain text.
func cleanText(s string) string {
	s = html.UnescapeString(plainText.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// textField cleans *v in place and records a length error under field.
func textField(fields map[string]string, field string, v *string, max int) {
	if v == nil {
		return
	}
	*v = cleanText(*v)
	if utf8.RuneCountInString(*v) > max {
		fields[field] = "too long"
	}
}

func validationOrNil(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return domain.NewValidationError(fields)
}
