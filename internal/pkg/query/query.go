// Package query turns free-text directory searches into canonical strings,
// keyword lists and cache fingerprints.
package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lowerFR = cases.Lower(language.French)

// fold lowercases s with French rules and puts it in NFC form.
func fold(s string) string {
	return norm.NFC.String(lowerFR.String(s))
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func runeLen(s string) int {
	return len([]rune(s))
}

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}
