package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// CategoryHandler handles category registry routes
type CategoryHandler struct {
	Categories *services.CategoryService
}

// List handles GET /categories
// @Summary List categories
// @Description List categories with pagination and an allow-listed sort field
// @Tags Categories
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field, '-' prefix for descending"
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	cats, total, err := h.Categories.List(skip, limit, c.Query("sort", "name"))
	if err != nil {
		return err
	}
	return utils.ListResponse(c, cats, total, skip, limit)
}

// Get handles GET /categories/:id
// @Summary Get a category
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return types.InvalidArgument("category.validation.id", "invalid category id")
	}
	cat, err := h.Categories.GetByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return types.NotFound("category.notfound", "category %d not found", id)
	}
	count, err := h.Categories.UsageCount(cat.Name)
	if err != nil {
		return err
	}
	cat.UsageCount = count
	return utils.SuccessResponse(c, fiber.StatusOK, cat)
}

type categoryCreateBody struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	RadarQuadrant *int   `json:"radar_quadrant"`
}

// Create handles POST /categories (superuser)
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param body body categoryCreateBody true "Category"
// @Security BearerAuth
// @Success 201 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var body categoryCreateBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("category.validation.input", "invalid category payload")
	}
	quadrant := -1
	if body.RadarQuadrant != nil {
		quadrant = *body.RadarQuadrant
	}
	actor := middleware.CurrentUser(c)
	cat, err := h.Categories.Create(body.Name, body.Description, quadrant, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, cat)
}

type categoryUpdateBody struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	RadarQuadrant *int    `json:"radar_quadrant"`
}

// Update handles PUT /categories/:id (superuser)
// @Summary Update a category
// @Description Patch a category; renames cascade to referencing solutions
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param body body categoryUpdateBody true "Patch"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return types.InvalidArgument("category.validation.id", "invalid category id")
	}
	var body categoryUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("category.validation.input", "invalid category payload")
	}
	actor := middleware.CurrentUser(c)
	cat, err := h.Categories.Update(id, services.CategoryPatch{
		Name:          body.Name,
		Description:   body.Description,
		RadarQuadrant: body.RadarQuadrant,
	}, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, cat)
}

// Delete handles DELETE /categories/:id (superuser)
// @Summary Delete a category
// @Description Fails with 409 while any solution references the category
// @Tags Categories
// @Param id path int true "Category ID"
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return types.InvalidArgument("category.validation.id", "invalid category id")
	}
	actor := middleware.CurrentUser(c)
	if err := h.Categories.Delete(id, actor.Username); err != nil {
		return err
	}
	return utils.DeletedResponse(c)
}
