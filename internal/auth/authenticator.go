package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/authority"
)

// Authenticator validates and proxies OTP-dispatch requests for returning
// users. OTP verification itself is an exchange between the client and the
// authority and is not handled here.
type Authenticator struct {
	authority Authority
	logger    *slog.Logger
}

// NewAuthenticator creates a session authenticator.
func NewAuthenticator(a Authority, logger *slog.Logger) *Authenticator {
	return &Authenticator{authority: a, logger: logger}
}

// RequestOTP asks the authority to dispatch a sign-in code. The phone is
// validated locally first; no network call happens on a malformed number.
func (a *Authenticator) RequestOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if !validPhone(phone) {
		return ErrInvalidPhone
	}

	err := a.authority.SendOTP(ctx, phone)
	if err == nil {
		return nil
	}

	var authErr *authority.Error
	if !errors.As(err, &authErr) {
		a.logger.Error("authority otp call failed", "error", err)
		return &UpstreamError{Message: "identity service is unavailable, try again later"}
	}

	switch authErr.Code {
	case authority.CodeUserNotFound:
		return ErrNoAccount
	case authority.CodeRateLimited:
		return ErrRateLimited
	default:
		return &UpstreamError{Message: authErr.Message}
	}
}
