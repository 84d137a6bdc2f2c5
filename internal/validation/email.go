// Package validation holds small input validation helpers shared across
// services and handlers.
package validation

import "regexp"

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like a deliverable email address. This
// is a format check only; no mailbox verification happens.
func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}
