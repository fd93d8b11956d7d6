package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps request fields to user-facing validation messages. It is
// also used for remote uniqueness conflicts, which surface as an error on
// the conflicting field. FieldErrors never leaves the provisioning
// boundary as anything but a structured errors map.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", "))
}

// UpstreamError carries an upstream service's own failure message. Raw
// transport errors are never wrapped into one verbatim.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

var (
	// ErrNoAccount maps the authority's USER_NOT_FOUND on OTP dispatch.
	ErrNoAccount = errors.New("no account exists for this phone number, register instead")
	// ErrRateLimited maps the authority's RATE_LIMITED on OTP dispatch.
	ErrRateLimited = errors.New("too many attempts, wait a moment and try again")
	// ErrInvalidPhone rejects a malformed phone before any network call.
	ErrInvalidPhone = errors.New("phone must be exactly 10 digits")
)
