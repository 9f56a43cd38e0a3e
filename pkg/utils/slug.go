package utils

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile("[^a-z0-9]+")

// Slugify lowercases s and joins its alphanumeric runs with hyphens,
// so "Deep Space Nine" becomes "deep-space-nine".
func Slugify(s string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
