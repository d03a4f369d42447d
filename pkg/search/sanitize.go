// ABOUTME: Query input sanitization for the text-search engine
// ABOUTME: Neutralizes characters significant to the query syntax

package search

import "strings"

// querySyntaxChars are significant to the underlying query language. Raw user
// input must never reach the engine with these intact, or a stray bracket
// turns into malformed or injected query syntax.
const querySyntaxChars = `+-=&|><!(){}[]^"~*?:\/`

// Sanitize neutralizes query-syntax characters in raw user input by turning
// them into whitespace, then collapses the result. An input that sanitizes to
// nothing yields an empty string, which callers treat as a zero-result query.
func Sanitize(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(querySyntaxChars, r) {
			return ' '
		}
		return r
	}, raw)

	return strings.Join(strings.Fields(cleaned), " ")
}
