package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// TagHandler handles tag registry routes
type TagHandler struct {
	Tags *services.TagService
}

// List handles GET /tags
// @Summary List tags
// @Description List tags with usage counts, pagination and sorting
// @Tags Tags
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field, '-' prefix for descending"
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Router /tags [get]
func (h *TagHandler) List(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	tags, total, err := h.Tags.List(skip, limit, c.Query("sort", "name"))
	if err != nil {
		return err
	}
	return utils.ListResponse(c, tags, total, skip, limit)
}

// GetByName handles GET /tags/:name
// @Summary Get a tag by name
// @Description The name is canonicalized before lookup
// @Tags Tags
// @Produce json
// @Param name path string true "Tag name (any raw form)"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /tags/{name} [get]
func (h *TagHandler) GetByName(c *fiber.Ctx) error {
	name := pathParam(c, "name")
	tag, err := h.Tags.GetByName(name)
	if err != nil {
		return err
	}
	if tag == nil {
		return types.NotFound("tag.notfound", "tag '%s' not found", name)
	}
	count, err := h.Tags.UsageCount(tag.Name)
	if err != nil {
		return err
	}
	tag.UsageCount = count
	return utils.SuccessResponse(c, fiber.StatusOK, tag)
}

type tagCreateBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /tags (superuser)
// @Summary Create a tag
// @Description The name is canonicalized before uniqueness is checked
// @Tags Tags
// @Accept json
// @Produce json
// @Param body body tagCreateBody true "Tag"
// @Security BearerAuth
// @Success 201 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /tags [post]
func (h *TagHandler) Create(c *fiber.Ctx) error {
	var body tagCreateBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("tag.validation.input", "invalid tag payload")
	}
	actor := middleware.CurrentUser(c)
	tag, err := h.Tags.Create(body.Name, body.Description, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, tag)
}

type tagUpdateBody struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	PropagateToSolutions bool    `json:"propagate_to_solutions"`
}

// Update handles PUT /tags/:id (superuser)
// @Summary Update a tag
// @Description Renames optionally propagate to every solution listing the tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param body body tagUpdateBody true "Patch"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /tags/{id} [put]
func (h *TagHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return types.InvalidArgument("tag.validation.id", "invalid tag id")
	}
	var body tagUpdateBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("tag.validation.input", "invalid tag payload")
	}
	actor := middleware.CurrentUser(c)
	tag, err := h.Tags.Update(id, services.TagPatch{
		Name:        body.Name,
		Description: body.Description,
	}, body.PropagateToSolutions, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, tag)
}

// Delete handles DELETE /tags/:id (superuser)
// @Summary Delete a tag
// @Description Fails with 409 while any solution lists the tag
// @Tags Tags
// @Param id path int true "Tag ID"
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /tags/{id} [delete]
func (h *TagHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return types.InvalidArgument("tag.validation.id", "invalid tag id")
	}
	actor := middleware.CurrentUser(c)
	if err := h.Tags.Delete(id, actor.Username); err != nil {
		return err
	}
	return utils.DeletedResponse(c)
}
