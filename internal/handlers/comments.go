package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// CommentHandler handles per-solution comment routes
type CommentHandler struct {
	Comments *services.CommentService
}

type commentBody struct {
	Content string `json:"content" form:"content"`
}

// ListForSolution handles GET /solutions/:slug/comments
// @Summary List comments for a solution
// @Description Oldest-first conversation order
// @Tags Comments
// @Produce json
// @Param slug path string true "Solution slug"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/comments [get]
func (h *CommentHandler) ListForSolution(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	comments, total, err := h.Comments.ListForSolution(c.Params("slug"), skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, comments, total, skip, limit)
}

// Create handles POST /solutions/:slug/comments
// @Summary Comment on a solution
// @Tags Comments
// @Accept json
// @Produce json
// @Param slug path string true "Solution slug"
// @Param body body commentBody true "Comment"
// @Security BearerAuth
// @Success 201 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/comments [post]
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	var body commentBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("comment.validation.input", "invalid comment payload")
	}
	actor := middleware.CurrentUser(c)
	comment, err := h.Comments.Create(c.Params("slug"), actor.Username, body.Content)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, comment)
}

// My handles GET /comments/my
// @Summary List my comments
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Router /comments/my [get]
func (h *CommentHandler) My(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	actor := middleware.CurrentUser(c)
	comments, total, err := h.Comments.ListByUser(actor.Username, skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, comments, total, skip, limit)
}

// Update handles PUT /comments/:id
// @Summary Update a comment
// @Description Author or superuser only
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Comment id"
// @Param body body commentBody true "Comment"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c *fiber.Ctx) error {
	var body commentBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("comment.validation.input", "invalid comment payload")
	}
	actor := middleware.CurrentUser(c)
	comment, err := h.Comments.Update(c.Params("id"), body.Content, actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, comment)
}

// Delete handles DELETE /comments/:id
// @Summary Delete a comment
// @Tags Comments
// @Param id path string true "Comment id"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.Comments.Delete(c.Params("id"), actor); err != nil {
		return err
	}
	return utils.DeletedResponse(c)
}
