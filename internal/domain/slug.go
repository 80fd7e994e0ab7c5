package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const slugPartMaxLen = 20

// Fallback slug parts used when a name is empty after normalization, so slug
// derivation never fails on missing names.
const (
	slugFallbackFirst = "user"
	slugFallbackLast  = "profile"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSlugPart lowercases a name part, strips diacritics, removes every
// character outside [a-z0-9] and truncates to 20 characters. When nothing
// survives, fallback is returned.
func NormalizeSlugPart(s, fallback string) string {
	s = strings.ToLower(s)
	if decomposed, _, err := transform.String(stripMarks, s); err == nil {
		s = decomposed
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = fallback
	}
	if len(out) > slugPartMaxLen {
		out = out[:slugPartMaxLen]
	}
	return out
}

// DeriveBaseSlug computes the public resume identifier for a candidate:
// {first}-{last}-{last two characters of the subject id, left-padded to 2}.
// Collision disambiguation (an appended counter) is the allocator's concern,
// not this function's.
func DeriveBaseSlug(firstName, lastName string, subject SubjectID) string {
	first := NormalizeSlugPart(firstName, slugFallbackFirst)
	last := NormalizeSlugPart(lastName, slugFallbackLast)

	suffix := string(subject)
	if len(suffix) > 2 {
		suffix = suffix[len(suffix)-2:]
	}
	for len(suffix) < 2 {
		suffix = "0" + suffix
	}
	return first + "-" + last + "-" + strings.ToLower(suffix)
}
