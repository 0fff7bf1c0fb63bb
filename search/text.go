package search

import (
	"strings"
	"unicode"
)

// Words ignored when checking for verbatim matches
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {}, "or": {}, "what": {}, "which": {},
}

// tokenize lowercases text and splits it on anything other than letters,
// digits and inner dots, so "Just-Enough-Items" yields three words while
// "1.20.1" stays whole. Stop words are dropped.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})

	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		words = append(words, f)
	}
	return words
}

// containsAllQueryWords reports whether every non-stop word of query appears
// in document. A query made only of stop words matches nothing.
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenize(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := make(map[string]struct{})
	for _, w := range tokenize(document) {
		docWords[w] = struct{}{}
	}

	for _, w := range queryWords {
		if _, ok := docWords[w]; !ok {
			return false
		}
	}
	return true
}
