// internal/common/validation/validators.go

// Package validation holds the field validators shared by the profile
// and notification workers and by the registry tooling. Document-level
// schema validation lives with the validate-profile-data worker.
package validation

import (
	"fmt"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// +82 international or 0-prefixed domestic numbers, with optional
	// space or hyphen separators between the groups.
	phonePattern = regexp.MustCompile(`^(\+82|0)[ -]?\d{1,2}[ -]?\d{3,4}[ -]?\d{4}$`)

	activityIDPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// ValidateEmail reports whether s looks like a deliverable address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePhone reports whether s is a plausible Korean phone number.
func ValidatePhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidateActivityNaming checks the registry id convention. Activity
// ids double as Zeebe task types, so both stay lower-kebab-case.
func ValidateActivityNaming(id string) error {
	if !activityIDPattern.MatchString(id) {
		return fmt.Errorf("activity id %q must be lower-kebab-case (e.g. find-matching-programs)", id)
	}
	return nil
}
