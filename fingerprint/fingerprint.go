// Package fingerprint derives content identity keys for dedup, blacklist,
// and rerun short-circuiting.
//
// The key is the SHA-256 of the content with all whitespace removed, so two
// listings that differ only in layout (spaces, tabs, newlines, CJK spacing)
// collapse to the same identity.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Strip removes every Unicode whitespace character from s.
func Strip(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Fingerprint returns the lowercase hex SHA-256 of the whitespace-stripped
// text. Deterministic; title, author, and tags never contribute.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(Strip(text)))
	return hex.EncodeToString(sum[:])
}
