package server

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	nameMinLength     = 3
	nameMaxLength     = 30
	passwordMinLength = 8
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Validators return the client message for an invalid value, or "" when it is valid.

func validateName(field, value string) string {
	n := utf8.RuneCountInString(value)
	if n < nameMinLength {
		return fmt.Sprintf("%s must contain at least %d characters!", field, nameMinLength)
	}
	if n > nameMaxLength {
		return fmt.Sprintf("%s cannot exceed %d characters!", field, nameMaxLength)
	}
	return ""
}

// validateEmail accepts a bare address, not the "Name <addr>" form.
func validateEmail(value string) string {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "Provide a valid email!"
	}
	return ""
}

func validatePhone(value string) string {
	if !phonePattern.MatchString(value) {
		return "Phone number must contain 10 to 15 digits!"
	}
	return ""
}

func validateDate(value string) string {
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return "Date must be in YYYY-MM-DD format!"
	}
	return ""
}

func validateTime(value string) string {
	if len(value) != len("15:04") {
		return "Time must be in HH:MM format!"
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return "Time must be in HH:MM format!"
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
