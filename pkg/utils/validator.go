package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// 10-digit enterprise code, optionally followed by a 3-digit branch suffix
var taxCodeRegex = regexp.MustCompile(`^\d{10}(-?\d{3})?$`)

// StripWhitespace removes every whitespace rune, e.g. "0123 456 789" -> "0123456789".
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ValidateTaxCode validates a Vietnamese tax code (MST)
func ValidateTaxCode(taxCode string) error {
	if !taxCodeRegex.MatchString(taxCode) {
		return fmt.Errorf("tax code must be 10 or 13 digits: %s", taxCode)
	}
	return nil
}

// ValidateSourceURL accepts absolute http(s) URLs only
func ValidateSourceURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL has no host: %s", raw)
	}
	return u, nil
}
