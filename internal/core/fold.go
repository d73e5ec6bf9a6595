package core

import (
	"strings"
	"unicode"
)

// foldName normalizes a name for keying and hashing. Each rune maps to the
// smallest rune in its case-folding orbit, so two names satisfy
// strings.EqualFold exactly when their folded forms are identical.
func foldName(s string) string {
	return strings.Map(foldRune, s)
}

func foldRune(r rune) rune {
	min := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < min {
			min = f
		}
	}
	return min
}
