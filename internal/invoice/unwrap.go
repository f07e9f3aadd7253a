package invoice

import (
	"strings"
	"unicode"
)

// Stripper removes one kind of wrapping that providers put around JSON
// replies. Strippers must return their input unchanged when it does not
// apply.
type Stripper func(string) string

// DefaultStrippers handles the wrappings seen in practice: surrounding
// whitespace, a byte order mark and a Markdown code fence with an optional
// language tag.
func DefaultStrippers() []Stripper {
	return []Stripper{
		strings.TrimSpace,
		StripBOM,
		StripCodeFence,
		strings.TrimSpace,
	}
}

// StripBOM drops a leading UTF-8 byte order mark
func StripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

// StripCodeFence removes an opening ``` fence (with or without a language
// tag such as "json") and the matching closing fence.
func StripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")

	if i := strings.IndexByte(body, '\n'); i >= 0 && isFenceTag(body[:i]) {
		body = body[i+1:]
	} else if i < 0 {
		body = strings.TrimLeftFunc(body, unicode.IsLetter)
	}

	body = strings.TrimSpace(body)
	return strings.TrimSuffix(body, "```")
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
