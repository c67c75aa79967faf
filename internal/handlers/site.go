package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// SiteHandler handles the singleton site configuration routes
type SiteHandler struct {
	Site *services.SiteService
}

// Get handles GET /site
// @Summary Read site configuration
// @Description Public; NotFound until the configuration is first created
// @Tags Site
// @Produce json
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /site [get]
func (h *SiteHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.Site.Get()
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, cfg)
}

// Create handles POST /site
// @Summary Create site configuration
// @Description Conflict when the configuration already exists
// @Tags Site
// @Accept json
// @Produce json
// @Param body body services.SiteConfigInput true "Configuration"
// @Security BearerAuth
// @Success 201 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /site [post]
func (h *SiteHandler) Create(c *fiber.Ctx) error {
	var input services.SiteConfigInput
	if err := c.BodyParser(&input); err != nil {
		return types.InvalidArgument("site.validation.input", "invalid site configuration payload")
	}
	actor := middleware.CurrentUser(c)
	cfg, err := h.Site.Create(input, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, cfg)
}

// Update handles PUT /site
// @Summary Update site configuration
// @Tags Site
// @Accept json
// @Produce json
// @Param body body services.SiteConfigPatch true "Patch"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /site [put]
func (h *SiteHandler) Update(c *fiber.Ctx) error {
	var patch services.SiteConfigPatch
	if err := c.BodyParser(&patch); err != nil {
		return types.InvalidArgument("site.validation.input", "invalid site configuration payload")
	}
	actor := middleware.CurrentUser(c)
	cfg, err := h.Site.Update(patch, actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, cfg)
}

// Reset handles POST /site/reset
// @Summary Reset site configuration to defaults
// @Tags Site
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Router /site/reset [post]
func (h *SiteHandler) Reset(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	cfg, err := h.Site.Reset(actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, cfg)
}
