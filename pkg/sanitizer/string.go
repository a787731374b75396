package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeNameForComparison folds case so "Court 1" and "court  1" collide.
func NormalizeNameForComparison(name string) string {
	return strings.ToLower(TrimAndNormalize(name))
}

func NormalizeAmenity(amenity string) string {
	return strings.ToLower(TrimAndNormalize(amenity))
}

// NormalizeNotes keeps line breaks and drops control characters.
func NormalizeNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, notes)
}
