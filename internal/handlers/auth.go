package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/utils"
)

// AuthHandler handles login and current-identity routes
type AuthHandler struct {
	Auth *services.AuthService
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Verify credentials (form-encoded) and issue a bearer token
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} utils.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid login payload")
	}

	user, err := h.Auth.Authenticate(body.Username, body.Password)
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return err
	}

	token, err := h.Auth.IssueToken(user)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me handles GET /auth/me
// @Summary Current identity
// @Description Return the account behind the presented bearer token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 401 {object} utils.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, fiber.StatusOK, middleware.CurrentUser(c))
}
