package item

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Clean trims leading/trailing whitespace and collapses internal runs of
// whitespace to single spaces. Any Unicode space counts, no-break space
// included. Case is preserved.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the cleaned, lowercased form of s used for case-insensitive
// comparisons. Lowercasing follows Dutch rules, so non-ASCII letters fold too.
func Fold(s string) string {
	// Casers are stateful; one per call.
	return cases.Lower(language.Dutch).String(Clean(s))
}
