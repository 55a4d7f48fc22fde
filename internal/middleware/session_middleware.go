package middleware

import (
	"context"
	"log/slog"
	"strings"

	"toko/internal/models"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// SessionResolver maps a session token to its user. A nil user with a nil
// error means the token does not identify anyone.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// SessionRequired rejects requests that carry no valid session with 401. The
// token is read from the session cookie, then from an "Authorization: Bearer"
// header.
func SessionRequired(resolver SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}

		user, err := resolver.ResolveSession(c.UserContext(), token)
		if err != nil {
			slog.Error("failed to resolve session", slog.String("path", c.Path()), slog.Any("err", err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Server error",
			})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Not authenticated",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by SessionRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
