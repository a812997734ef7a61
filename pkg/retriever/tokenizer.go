package retriever

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase terms. Latin letters and digits group
// into runs; CJK ideographs tokenize one per rune, which works well enough
// for BM25 over Chinese text without a segmentation dictionary.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}
