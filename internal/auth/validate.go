package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9]{10}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)
)

// RegistrationRequest is a new-account submission before normalization.
type RegistrationRequest struct {
	Username    string
	DisplayName string
	Phone       string
	Email       string
}

// validateRegistration checks every field and reports all failures
// together, keyed by field.
func validateRegistration(req RegistrationRequest) FieldErrors {
	errs := FieldErrors{}

	username := strings.TrimSpace(req.Username)
	switch {
	case utf8.RuneCountInString(username) < 3:
		errs["username"] = "username must be at least 3 characters"
	case !usernameRe.MatchString(username):
		errs["username"] = "username may only contain letters, numbers, and underscores"
	}

	if utf8.RuneCountInString(strings.TrimSpace(req.DisplayName)) < 2 {
		errs["name"] = "name must be at least 2 characters"
	}

	if !phoneRe.MatchString(strings.TrimSpace(req.Phone)) {
		errs["phone"] = ErrInvalidPhone.Error()
	}

	if email := strings.TrimSpace(req.Email); email != "" && !emailRe.MatchString(email) {
		errs["email"] = "email address is not valid"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validPhone(phone string) bool {
	return phoneRe.MatchString(strings.TrimSpace(phone))
}
