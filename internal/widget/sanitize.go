package widget

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	octetRe       = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Sanitize keeps only the recognized keys of a submitted settings form.
//
// The bar flag is taken from the presence of the checkbox: a checked box
// submits "on", which a numeric-only filter would turn into "". Explicit
// false values are kept as "0".
func Sanitize(input map[string]string) map[string]string {
	out := make(map[string]string, 2)

	if v, ok := input[KeySlug]; ok {
		s := SanitizeTextField(v)
		if s != "" && !slug.IsSlug(s) {
			slog.Warn("Profile slug is not in canonical form", "slug", s)
		}
		out[KeySlug] = s
	}

	if v, ok := input[KeyBarEnabled]; ok {
		out[KeyBarEnabled] = sanitizeFlag(v)
	}

	return out
}

func sanitizeFlag(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "false", "off", "no":
		return "0"
	}
	if n, err := strconv.ParseInt(FilterNumberInt(v), 10, 64); err == nil && v != "" && n == 0 {
		return "0"
	}
	return "1"
}

// SanitizeTextField cleans a single-line text value: invalid UTF-8 and
// markup are removed, whitespace is collapsed and the result trimmed.
// Applying it twice yields the same value as applying it once.
func SanitizeTextField(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = scriptStyleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	for {
		stripped := octetRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FilterNumberInt keeps digits and sign characters only.
func FilterNumberInt(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' || r == '-' {
			return r
		}
		return -1
	}, s)
}
