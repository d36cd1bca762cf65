package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// URL normalization errors.
var (
	// ErrEmptyURL is returned when the URL is empty or whitespace only.
	ErrEmptyURL = errors.New("url cannot be empty")
)

// normalizeFlags is the purell flag set applied to every URL before it is
// fingerprinted or stored. Scheme and host are lowercased, default ports and
// fragments removed, escapes canonicalized, query keys sorted, and duplicate
// or trailing slashes collapsed so that trivially different spellings of the
// same page share one record.
const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagUppercaseEscapes |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagEncodeNecessaryEscapes |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagRemoveEmptyQuerySeparator |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveTrailingSlash |
	purell.FlagSortQuery |
	purell.FlagRemoveEmptyPortSeparator |
	purell.FlagRemoveUnnecessaryHostDots

// NormalizeURL canonicalizes a raw URL string into the form used as crawl
// identity. Two URLs that differ only by fragment, letter case of scheme or
// host, a default port, or a trailing slash normalize to the same string.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrEmptyURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	normalized, err := url.Parse(purell.NormalizeURL(u, normalizeFlags))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	// Root pages keep a single slash so that "http://host" and "http://host/"
	// share one record.
	if normalized.Path == "" {
		normalized.Path = "/"
	}

	return normalized.String(), nil
}
