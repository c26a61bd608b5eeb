package validators

import "strings"

// NormalizeText trims input and collapses every internal whitespace run to a
// single space, so "  cold   flu " and "cold flu" are the same keyword.
func NormalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
