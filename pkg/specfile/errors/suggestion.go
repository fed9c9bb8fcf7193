package errors

import (
	"fmt"
	"strings"
)

// maxSuggestionDistance bounds how different a candidate may be and still
// be offered as a typo fix.
const maxSuggestionDistance = 3

// SuggestFieldName suggests the closest valid name for an unknown section,
// settings key or distribution kind using Levenshtein distance. When nothing
// is close it lists the valid names.
func SuggestFieldName(unknown string, validFields []string) string {
	if len(validFields) == 0 {
		return ""
	}

	best, dist := Closest(unknown, validFields)
	if dist <= maxSuggestionDistance {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Valid fields: %s", strings.Join(validFields, ", "))
}

// SuggestMissingSection suggests adding a required section.
func SuggestMissingSection(section, example string) string {
	if example != "" {
		return fmt.Sprintf("Add '%s: %s' to the specification", section, example)
	}
	return fmt.Sprintf("Add a '%s' section to the specification", section)
}

// SuggestDeclaration suggests declaring an unbound variable.
func SuggestDeclaration(name string, declared []string) string {
	if best, dist := Closest(name, declared); best != "" && dist <= maxSuggestionDistance {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Declare '%s' in the declarations section", name)
}

// Closest returns the candidate with the smallest edit distance to s.
func Closest(s string, candidates []string) (string, int) {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshteinDistance(s, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// levenshteinDistance computes the edit distance between two strings using
// two rolling rows.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	a, b := []rune(s1), []rune(s2)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
