package util

import (
	"regexp"
	"strings"
)

var (
	nameSeparators = regexp.MustCompile(`[_\s]+`)
	nameDisallowed = regexp.MustCompile(`[^a-z0-9.-]`)
)

// NormalizeName converts an arbitrary topology name into a form that is
// safe for Kubernetes resource names: lowercase alphanumerics, '-' and '.',
// starting and ending with an alphanumeric. The result is deterministic
// and normalizing an already-normalized name returns it unchanged.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = nameSeparators.ReplaceAllString(s, "-")
	s = nameDisallowed.ReplaceAllString(s, "")
	s = strings.Trim(s, ".-")
	if s == "" || !isAlnum(s[0]) {
		s = "x" + s
	}
	if !isAlnum(s[len(s)-1]) {
		s += "0"
	}
	return s
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
