package facematch

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Enrolled names are exact, case-sensitive keys. Normalization here is for
// human-facing conveniences only: deriving names from filenames and
// suggesting close names on a failed lookup. It never changes what gets
// stored or matched.

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizePersonName normalizes a name for comparison (lowercase, no
// diacritics, spaces for dashes and underscores).
func NormalizePersonName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return name
}

// NameFromFile derives an enrollment name from an image path: the file
// stem, whitespace-trimmed. "faces/Ana Novak.jpg" -> "Ana Novak".
func NameFromFile(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(stem)
}

// Suggest returns the enrolled name that matches candidate after
// normalization, or "" when none does. Used for "did you mean" hints when
// an exact lookup misses.
func Suggest(names []string, candidate string) string {
	want := NormalizePersonName(candidate)
	if want == "" {
		return ""
	}
	for _, n := range names {
		if n != candidate && NormalizePersonName(n) == want {
			return n
		}
	}
	return ""
}
