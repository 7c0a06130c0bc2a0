package ranking

import (
	"strings"
	"unicode"
)

// SignificantWords returns the lowercased words of q longer than two runes, with edge
// punctuation trimmed. Duplicates are dropped.
func SignificantWords(q string) []string {
	seen := make(map[string]bool)
	words := []string{}
	for _, w := range strings.Fields(q) {
		w = normalizeToken(w)
		if len([]rune(w)) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// normalizeToken lowercases a token and trims leading/trailing punctuation, keeping
// internal punctuation like hyphens.
func normalizeToken(token string) string {
	return strings.TrimFunc(strings.ToLower(token), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// CountMatchingTerms counts how many terms are found in the text.
func CountMatchingTerms(terms []string, text string) int {
	count := 0
	textLower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(textLower, term) {
			count++
		}
	}
	return count
}

// MatchesMostWords reports whether a multi-word query has at least half of its
// significant words in text.
func MatchesMostWords(query, text string) bool {
	words := SignificantWords(query)
	if len(words) < 2 {
		return false
	}
	return CountMatchingTerms(words, text)*2 >= len(words)
}

// CompactUpper uppercases s and removes all whitespace, e.g. "cs 1332" -> "CS1332".
func CompactUpper(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
