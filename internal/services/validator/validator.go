// Package validator decides whether a client-supplied target may be handed to
// a diagnostic tool.
package validator

import (
	"regexp"
	"strings"
)

var (
	// Dot-separated DNS labels of 1-63 characters; hyphens only inside a label.
	hostnamePattern = regexp.MustCompile(
		`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`,
	)

	ipv4Pattern = regexp.MustCompile(
		`^((25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(25[0-5]|2[0-4]\d|[01]?\d\d?)$`,
	)
)

// Validate reports whether target is a string that fully matches the hostname
// or IPv4 grammar. Absent, non-string and empty values are rejected.
func Validate(target any) bool {
	s, ok := target.(string)
	if !ok {
		return false
	}
	return ValidTarget(s)
}

// ValidTarget is the typed form of Validate.
func ValidTarget(s string) bool {
	if s == "" {
		return false
	}
	if ipv4Pattern.MatchString(s) {
		return true
	}
	// A dotted-decimal string that is not a valid address (256.1.1.1, 1.2.3)
	// would otherwise pass as a hostname.
	if isNumericDotted(s) {
		return false
	}
	return hostnamePattern.MatchString(s)
}

func isNumericDotted(s string) bool {
	return strings.Trim(s, "0123456789.") == ""
}
