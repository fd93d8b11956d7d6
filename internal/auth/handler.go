package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/session"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/wallet"
)

// Handler exposes the pre-auth provisioning endpoints.
type Handler struct {
	provisioner   *Provisioner
	authenticator *Authenticator
	wallets       *wallet.Keystore
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(provisioner *Provisioner, authenticator *Authenticator, wallets *wallet.Keystore) *Handler {
	return &Handler{provisioner: provisioner, authenticator: authenticator, wallets: wallets}
}

type createRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Create handles new-account registration.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.provisioner.Register(c.UserContext(), RegistrationRequest{
		Username:    req.Username,
		DisplayName: req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
	})

	var fieldErrs FieldErrors
	switch {
	case err == nil:
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "account created, a verification code is on its way",
		})
	case errors.As(err, &fieldErrs):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

// SendOTP dispatches a sign-in code for a returning user.
func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	err := h.authenticator.RequestOTP(c.UserContext(), req.Phone)
	switch {
	case err == nil:
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "verification code sent",
		})
	case errors.Is(err, ErrInvalidPhone):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoAccount):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRateLimited):
		return fiber.NewError(http.StatusTooManyRequests, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

// Logout signs the device out: the session cookie is dropped and the
// wallet slot is destroyed, so the next first-use mints a new address.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.wallets.Clear(c.UserContext()); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not clear device wallet")
	}
	c.ClearCookie(session.CookieName)
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "message": "signed out"})
}
