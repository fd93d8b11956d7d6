package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/authority"
)

// Authority is the slice of the identity authority this package consumes.
type Authority interface {
	Register(ctx context.Context, payload authority.RegisterPayload) error
	SendOTP(ctx context.Context, phone string) error
}

// Provisioner validates and proxies new-account registration to the
// identity authority.
type Provisioner struct {
	authority Authority
	logger    *slog.Logger
}

// NewProvisioner creates an account provisioner.
func NewProvisioner(a Authority, logger *slog.Logger) *Provisioner {
	return &Provisioner{authority: a, logger: logger}
}

// Register runs local validation, normalizes the request, and issues a
// single registration call. Validation failures return before any network
// call; a successful return means the authority has dispatched an OTP to
// the phone. The call is never retried, a replayed registration risks a
// duplicate submission.
func (p *Provisioner) Register(ctx context.Context, req RegistrationRequest) error {
	if errs := validateRegistration(req); errs != nil {
		return errs
	}

	payload := authority.RegisterPayload{
		Username:    strings.ToLower(strings.TrimSpace(req.Username)),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
	}

	err := p.authority.Register(ctx, payload)
	if err == nil {
		return nil
	}

	var authErr *authority.Error
	if !errors.As(err, &authErr) {
		p.logger.Error("authority registration call failed", "error", err)
		return &UpstreamError{Message: "identity service is unavailable, try again later"}
	}

	switch authErr.Code {
	case authority.CodeUsernameTaken:
		return FieldErrors{"username": authErr.Message}
	case authority.CodePhoneTaken:
		return FieldErrors{"phone": authErr.Message}
	case authority.CodeEmailTaken:
		return FieldErrors{"email": authErr.Message}
	default:
		return &UpstreamError{Message: authErr.Message}
	}
}
