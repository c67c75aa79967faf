package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/models"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
)

// UserKey is the fiber.Ctx locals key holding the authenticated *models.User.
const UserKey = "user"

// RequireUser validates the bearer token and loads the caller's account into
// the request context. 401 responses carry WWW-Authenticate: Bearer.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, auth)
		if err != nil {
			return err
		}
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// RequireSuperuser validates the bearer token and additionally requires the
// superuser flag.
func RequireSuperuser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, auth)
		if err != nil {
			return err
		}
		if !user.IsSuperuser {
			return types.Forbidden("auth.superuser", "superuser privileges required")
		}
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireUser.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}

// authenticate resolves the Authorization header to an active local account.
func authenticate(c *fiber.Ctx, auth *services.AuthService) (*models.User, error) {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, types.Unauthorized("auth.token.missing", "missing bearer token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, types.Unauthorized("auth.token", "invalid authorization header")
	}

	username, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}

	user, err := auth.GetUser(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, types.Unauthorized("auth.token.subject", "unknown token subject")
	}
	if !user.IsActive {
		return nil, types.Unauthorized("auth.inactive", "account inactive")
	}
	return user, nil
}
