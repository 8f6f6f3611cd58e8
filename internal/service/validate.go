package service

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation limits.  The price cap is a soft sanity bound against
// fat-fingered input ("unusually high"), not a domain rule.
const (
	MinPasswordLen = 6
	MaxPartNameLen = 255
	MaxIssueLen    = 1000
	MaxPartPrice   = 1_000_000
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError carries one message per offending field.  Handlers
// serialize the map as-is so clients can attach messages to inputs.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldErrors map[string]string

func (f fieldErrors) err() *ValidationError {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateAccountInput checks the shared registration fields of
// customers and mechanics.  A nil return means the input is clean.
func ValidateAccountInput(first, last, email, password string) *ValidationError {
	errs := fieldErrors{}
	if strings.TrimSpace(first) == "" {
		errs["first_name"] = "first_name is required"
	}
	if strings.TrimSpace(last) == "" {
		errs["last_name"] = "last_name is required"
	}
	switch {
	case strings.TrimSpace(email) == "":
		errs["email"] = "email is required"
	case !emailRx.MatchString(strings.TrimSpace(email)):
		errs["email"] = "email is not a valid address"
	}
	if len(password) < MinPasswordLen {
		errs["password"] = fmt.Sprintf("password must be at least %d characters", MinPasswordLen)
	}
	return errs.err()
}

// ValidEmail reports whether s looks like an email address.  The check
// is shape-only (local@domain.tld); deliverability is not our problem.
func ValidEmail(s string) bool {
	return emailRx.MatchString(strings.TrimSpace(s))
}

// ValidatePartInput checks inventory part name and price.
func ValidatePartInput(name string, price float64) *ValidationError {
	errs := fieldErrors{}
	switch {
	case strings.TrimSpace(name) == "":
		errs["part_name"] = "part_name is required"
	case len(name) > MaxPartNameLen:
		errs["part_name"] = fmt.Sprintf("part_name must be at most %d characters", MaxPartNameLen)
	}
	switch {
	case price < 0:
		errs["price"] = "price must not be negative"
	case price > MaxPartPrice:
		errs["price"] = "price is unusually high"
	}
	return errs.err()
}
