package search

import "strings"

// Stop words ignored when matching interest queries word by word
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"to": true, "of": true, "and": true, "in": true, "for": true,
	"on": true, "with": true, "at": true, "by": true, "from": true,
	"research": true, "interests": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', ';', '|', '/', '●', '•':
			return true
		}
		return false
	})
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".!?:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWordSet := make(map[string]bool)
	for _, word := range tokenizeAndFilter(document) {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
