package utils

import (
	"regexp"
	"strings"
)

// PhonePattern accepts a 10-digit Indian mobile number (leading 6-9). Login,
// checkout and the binding tag all use this one rule.
var PhonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

const (
	PhoneMessage   = "Please enter a valid 10-digit Indian mobile number."
	NameMessage    = "Name must be at least 2 characters."
	MinNameLength  = 2
	DefaultNewName = "New User"
)

func ValidPhone(phone string) bool {
	return PhonePattern.MatchString(phone)
}

func ValidName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= MinNameLength
}
