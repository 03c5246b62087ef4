package service

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// StringMatcher scores how alike two strings are, from 0 (unrelated) to 1 (equal).
type StringMatcher interface {
	Similarity(a, b string) float64
}

// LevenshteinMatcher is 1 minus the edit distance over the longer length.
type LevenshteinMatcher struct{}

func (LevenshteinMatcher) Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
