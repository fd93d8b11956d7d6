package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/middleware"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
)

// Handler exposes the authenticated profile endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// optionalField distinguishes an omitted JSON key from one set to null or
// to a value. UnmarshalJSON only runs when the key is present.
type optionalField struct {
	present bool
	value   *string
}

func (f *optionalField) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

type updateRequest struct {
	DisplayName    optionalField `json:"displayName"`
	ProfilePicture optionalField `json:"profilePicture"`
}

type userResponse struct {
	ID          string  `json:"id"`
	FID         int64   `json:"fid"`
	Username    string  `json:"username"`
	DisplayName *string `json:"displayName"`
	PfpURL      *string `json:"pfpUrl"`
}

func toResponse(u user.User) userResponse {
	return userResponse{
		ID:          u.ID,
		FID:         u.FID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PfpURL:      u.AvatarURL,
	}
}

// Update applies display-name and avatar changes for the session user.
func (h *Handler) Update(c *fiber.Ctx) error {
	current, ok := middleware.SessionUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	changes := Changes{}
	if req.DisplayName.present {
		// An empty display name is an explicit clear, distinct from the
		// field being omitted.
		if req.DisplayName.value == nil || *req.DisplayName.value == "" {
			changes.DisplayName = user.Clear()
		} else {
			changes.DisplayName = user.Replace(*req.DisplayName.value)
		}
	}
	if req.ProfilePicture.present {
		changes.Avatar.Set = true
		if req.ProfilePicture.value != nil {
			changes.Avatar.Payload = []byte(*req.ProfilePicture.value)
		}
	}

	updated, err := h.service.Update(c.UserContext(), current.ID, changes)
	if err != nil {
		var uploadErr *UploadError
		if errors.As(err, &uploadErr) {
			return fiber.NewError(http.StatusBadRequest, uploadErr.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"user": toResponse(updated)})
}

// Me returns the session user's profile view.
func (h *Handler) Me(c *fiber.Ctx) error {
	current, ok := middleware.SessionUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": toResponse(current)})
}
