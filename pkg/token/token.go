package token

import (
	"strings"
)

// Boundary lists the characters stripped from both ends of every token.
// Interior occurrences are kept, so "well-acted" stays one token.
const Boundary = `,.!?-;:"'()`

// Tokenize splits text on whitespace and normalizes each field.
// Fields that normalize to nothing are dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	list := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := Normalize(f); t != "" {
			list = append(list, t)
		}
	}
	return list
}

// Normalize lower-cases a single word and trims boundary punctuation.
func Normalize(word string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(word)), Boundary)
}
