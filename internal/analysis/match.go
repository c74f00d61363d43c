package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountWholeWord counts non-overlapping occurrences of term in text that are
// delimited by word boundaries. Letters (accented ones included), digits and
// the underscore are word characters. Both arguments are expected lowercased.
func CountWholeWord(text, term string) int {
	if term == "" || len(term) > len(text) {
		return 0
	}

	count := 0
	offset := 0
	for offset <= len(text)-len(term) {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(term)

		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return count
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
