package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// UserHandler handles account management routes
type UserHandler struct {
	Users *services.UserService
}

type userCreateBody struct {
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	Email       string `json:"email" form:"email"`
	FullName    string `json:"full_name" form:"full_name"`
	IsSuperuser bool   `json:"is_superuser" form:"is_superuser"`
}

type userUpdateBody struct {
	Email       *string `json:"email"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type passwordBody struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// List handles GET /users
// @Summary List accounts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 403 {object} utils.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	users, total, err := h.Users.List(skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, users, total, skip, limit)
}

// Get handles GET /users/:username
// @Summary Get an account
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /users/{username} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.Users.Get(c.Params("username"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user)
}

// Create handles POST /users
// @Summary Create an account
// @Tags Users
// @Accept json
// @Produce json
// @Param body body userCreateBody true "Account"
// @Security BearerAuth
// @Success 201 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var body userCreateBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("user.validation.input", "invalid user payload")
	}
	actor := middleware.CurrentUser(c)
	user, err := h.Users.Create(body.Username, body.Password, body.Email, body.FullName, body.IsSuperuser, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, user)
}

// Update handles PUT /users/:username
// @Summary Update an account
// @Description Self or superuser; is_active/is_superuser flags are superuser-only
// @Tags Users
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param body body userUpdateBody true "Patch"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /users/{username} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var body userUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("user.validation.input", "invalid user payload")
	}
	actor := middleware.CurrentUser(c)
	user, err := h.Users.Update(c.Params("username"), services.UserPatch{
		Email:       body.Email,
		FullName:    body.FullName,
		IsActive:    body.IsActive,
		IsSuperuser: body.IsSuperuser,
	}, actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, user)
}

// ChangePassword handles POST /users/me/password
// @Summary Change my password
// @Description Rejected for externally-managed accounts
// @Tags Users
// @Accept json
// @Produce json
// @Param body body passwordBody true "Current and new password"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Failure 403 {object} utils.Envelope
// @Router /users/me/password [post]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var body passwordBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("user.validation.input", "invalid password payload")
	}
	actor := middleware.CurrentUser(c)
	if err := h.Users.ChangePassword(actor.Username, body.CurrentPassword, body.NewPassword); err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"changed": true})
}

// Delete handles DELETE /users/:username
// @Summary Delete an account
// @Description Self or superuser; the bootstrap admin and externally-managed accounts cannot be deleted
// @Tags Users
// @Param username path string true "Username"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /users/{username} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.Users.Delete(c.Params("username"), actor); err != nil {
		return err
	}
	return utils.DeletedResponse(c)
}
