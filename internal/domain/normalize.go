package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for first/last name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ComposeFullName derives the display full name from first and last name.
// Either part may be empty; the result never has leading/trailing space.
func ComposeFullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
