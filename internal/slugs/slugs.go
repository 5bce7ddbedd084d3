// Package slugs provides the canonical slug normalization used to compare free-text
// city and province names with site folder names.
//
// A slug is lower-case ASCII, dash separated, with no leading or trailing dash:
// "Liège" -> "liege", "Braine-l'Alleud" -> "braine-l-alleud".
package slugs

import (
	"regexp"
	"strings"

	goslug "github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize converts a display name to its canonical slug.
//
// Diacritics are transliterated to ASCII, every run of characters outside [a-z0-9]
// becomes a single dash, and leading/trailing dashes are trimmed. Empty input
// yields an empty slug. Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	// unidecode can emit upper-case letters ("Æ" -> "AE"), lower again.
	s = strings.ToLower(unidecode.Unidecode(s))
	s = nonSlugRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FolderSlug derives the slug of a site folder by stripping prefix when present.
// "prix-m2-a-namur" with prefix "prix-m2-a-" -> "namur".
func FolderSlug(folder, prefix string) string {
	if prefix != "" && strings.HasPrefix(folder, prefix) && len(folder) > len(prefix) {
		return folder[len(prefix):]
	}
	return folder
}

// IsCanonical reports whether s is already a canonical slug, i.e. Normalize(s) == s
// and s is non-empty.
func IsCanonical(s string) bool {
	if !goslug.IsSlug(s) {
		return false
	}
	return Normalize(s) == s
}
