package utils

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCategory canonicalizes a category label so exact matching is stable:
// NFC form, trimmed, internal whitespace collapsed to single spaces. Case is preserved.
func NormalizeCategory(category string) string {
	return strings.Join(strings.Fields(norm.NFC.String(category)), " ")
}

// maxSuggestionDistance bounds how different a suggestion may be from the input
const maxSuggestionDistance = 3

// SuggestCategory returns the known category closest to input, comparing case-folded labels.
// It returns false when nothing is close enough to be a plausible typo.
func SuggestCategory(input string, known []string) (string, bool) {
	folder := cases.Fold()
	target := folder.String(NormalizeCategory(input))
	if target == "" {
		return "", false
	}

	best := ""
	bestDistance := -1
	for _, candidate := range known {
		distance := levenshtein.ComputeDistance(target, folder.String(candidate))
		if bestDistance == -1 || distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}

	limit := maxSuggestionDistance
	if n := len([]rune(target)) / 2; n < limit {
		limit = n
	}
	if bestDistance == -1 || bestDistance > limit {
		return "", false
	}
	return best, true
}
