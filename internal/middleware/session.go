package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/session"
	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/user"
)

const sessionUserKey = "session_user"

// Session gates a route group behind session resolution. Every failure
// mode produces the identical 401 so callers cannot probe which accounts
// exist.
func Session(resolver *session.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := resolver.Resolve(c.UserContext(), c.Cookies(session.CookieName))
		if err != nil {
			if errors.Is(err, session.ErrUnauthenticated) {
				return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
			}
			return fiber.NewError(http.StatusInternalServerError, "session lookup failed")
		}
		c.Locals(sessionUserKey, u)
		return c.Next()
	}
}

// SessionUser returns the user resolved by the Session middleware.
func SessionUser(c *fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(sessionUserKey).(user.User)
	return u, ok
}
