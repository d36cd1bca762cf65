package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// URLRecord is the unit of frontier state: one discovered URL, keyed by the
// fingerprint of its normalized form.
type URLRecord struct {
	// Fingerprint is the stable identity key derived from the normalized URL.
	Fingerprint string `json:"fingerprint"`

	// URL is the normalized URL string.
	URL string `json:"url"`

	// Visited is true once the URL has been fetched and either admitted or
	// rejected. It never reverts to false.
	Visited bool `json:"visited"`
}

// Fingerprint returns the identity key for a normalized URL: the hex-encoded
// SHA-256 digest of the string. Callers must normalize first; the digest of
// two non-normalized spellings of the same page will not match.
func Fingerprint(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))
	return hex.EncodeToString(sum[:])
}
