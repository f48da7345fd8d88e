package booking

import (
	"regexp"
	"strings"
)

// phonePattern accepts digits with optional leading + and common formatting
// characters, at least ten characters long. The exact pattern is a
// compatibility surface for stored customer records.
var phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{10,}$`)

// IsValidPhoneNumber reports whether phone matches the accepted format.
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}
