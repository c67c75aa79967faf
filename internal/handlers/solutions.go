package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// SolutionHandler handles solution registry routes
type SolutionHandler struct {
	Solutions *services.SolutionService
	History   *services.HistoryService
}

// List handles GET /solutions
// @Summary List solutions
// @Description Compound filtering (category, department, team, stage, recommend_status, review_status, tag) with allow-listed sorting
// @Tags Solutions
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field, '-' prefix for descending"
// @Param category query string false "Filter by category name"
// @Param department query string false "Filter by department"
// @Param team query string false "Filter by team"
// @Param stage query string false "Filter by stage"
// @Param recommend_status query string false "Filter by recommendation"
// @Param review_status query string false "Filter by review status"
// @Param tag query string false "Filter by tag membership"
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Router /solutions [get]
func (h *SolutionHandler) List(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	filter := services.SolutionFilter{
		Category:        c.Query("category"),
		Department:      c.Query("department"),
		Team:            c.Query("team"),
		Stage:           c.Query("stage"),
		RecommendStatus: c.Query("recommend_status"),
		ReviewStatus:    c.Query("review_status"),
		Tag:             c.Query("tag"),
	}
	sols, total, err := h.Solutions.List(filter, skip, limit, c.Query("sort", "name"))
	if err != nil {
		return err
	}
	return utils.ListResponse(c, sols, total, skip, limit)
}

// Get handles GET /solutions/:slug
// @Summary Get a solution by slug
// @Tags Solutions
// @Produce json
// @Param slug path string true "Solution slug"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug} [get]
func (h *SolutionHandler) Get(c *fiber.Ctx) error {
	slug := c.Params("slug")
	sol, err := h.Solutions.GetBySlug(slug)
	if err != nil {
		return err
	}
	if sol == nil {
		return types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, sol)
}

// Create handles POST /solutions
// @Summary Register a solution
// @Description Resolves or creates the category and tags, derives a unique slug, defaults maintainer identity from the caller
// @Tags Solutions
// @Accept json
// @Produce json
// @Param body body services.SolutionInput true "Solution"
// @Security BearerAuth
// @Success 201 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Router /solutions [post]
func (h *SolutionHandler) Create(c *fiber.Ctx) error {
	var body struct {
		services.SolutionInput
		Tags types.FlexList[string] `json:"tags"`
	}
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("solution.validation.input", "invalid solution payload")
	}
	input := body.SolutionInput
	input.Tags = body.Tags.Slice()

	actor := middleware.CurrentUser(c)
	sol, err := h.Solutions.Create(input, actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, sol)
}

// Update handles PUT /solutions/:slug
// @Summary Update a solution
// @Description Maintainer/creator or superuser only; review_status changes are superuser-only; a rename regenerates the slug
// @Tags Solutions
// @Accept json
// @Produce json
// @Param slug path string true "Solution slug"
// @Param body body services.SolutionPatch true "Patch"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug} [put]
func (h *SolutionHandler) Update(c *fiber.Ctx) error {
	var patch services.SolutionPatch
	if err := c.BodyParser(&patch); err != nil {
		return types.InvalidArgument("solution.validation.input", "invalid solution payload")
	}
	actor := middleware.CurrentUser(c)
	sol, err := h.Solutions.Update(c.Params("slug"), patch, actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, sol)
}

// Delete handles DELETE /solutions/:slug
// @Summary Delete a solution
// @Tags Solutions
// @Param slug path string true "Solution slug"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug} [delete]
func (h *SolutionHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.Solutions.Delete(c.Params("slug"), actor); err != nil {
		return err
	}
	return utils.DeletedResponse(c)
}

// Search handles GET /solutions/search
// @Summary Search solutions
// @Description Keyword match across name, category, tags, team, maintainer, description, pros and cons; best matches first
// @Tags Solutions
// @Produce json
// @Param q query string true "Keyword"
// @Param limit query int false "Max results"
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Router /solutions/search [get]
func (h *SolutionHandler) Search(c *fiber.Ctx) error {
	_, limit := parsePage(c)
	sols, err := h.Solutions.Search(c.Query("q"), limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, sols, int64(len(sols)), 0, limit)
}

// My handles GET /solutions/my
// @Summary List my solutions
// @Description Solutions created or maintained by the caller
// @Tags Solutions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Router /solutions/my [get]
func (h *SolutionHandler) My(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	actor := middleware.CurrentUser(c)
	sols, total, err := h.Solutions.ListByMaintainer(actor.Username, skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, sols, total, skip, limit)
}

// Departments handles GET /solutions/departments
// @Summary List departments
// @Description Distinct department names across all solutions
// @Tags Solutions
// @Produce json
// @Success 200 {object} utils.Envelope
// @Router /solutions/departments [get]
func (h *SolutionHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.Solutions.Departments()
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, departments)
}

// CheckName handles GET /solutions/check-name/:name
// @Summary Check name availability
// @Description Reports whether the name's derived slug is still free
// @Tags Solutions
// @Produce json
// @Param name path string true "Candidate name"
// @Success 200 {object} utils.Envelope
// @Router /solutions/check-name/{name} [get]
func (h *SolutionHandler) CheckName(c *fiber.Ctx) error {
	available, slug, err := h.Solutions.CheckName(pathParam(c, "name"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"available": available,
		"slug":      slug,
	})
}

// AdoptedUsers handles GET /solutions/:slug/adopted-users
// @Summary List adopted users
// @Tags Solutions
// @Produce json
// @Param slug path string true "Solution slug"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/adopted-users [get]
func (h *SolutionHandler) AdoptedUsers(c *fiber.Ctx) error {
	slug := c.Params("slug")
	sol, err := h.Solutions.GetBySlug(slug)
	if err != nil {
		return err
	}
	if sol == nil {
		return types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, sol.AdoptedUsers)
}

// Adopt handles POST /solutions/:slug/adopted-users
// @Summary Mark the caller as an adopter
// @Tags Solutions
// @Produce json
// @Param slug path string true "Solution slug"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/adopted-users [post]
func (h *SolutionHandler) Adopt(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	sol, err := h.Solutions.AdoptUser(c.Params("slug"), actor.Username)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, sol.AdoptedUsers)
}

// SolutionHistory handles GET /solutions/:slug/history
// @Summary Per-solution change history
// @Description History records for this solution, newest-first
// @Tags Solutions
// @Produce json
// @Param slug path string true "Solution slug"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/history [get]
func (h *SolutionHandler) SolutionHistory(c *fiber.Ctx) error {
	slug := c.Params("slug")
	sol, err := h.Solutions.GetBySlug(slug)
	if err != nil {
		return err
	}
	if sol == nil {
		return types.NotFound("solution.notfound", "solution '%s' not found", slug)
	}
	skip, limit := parsePage(c)
	records, total, err := h.History.List(services.HistoryFilter{
		ObjectType: "solution",
		ObjectID:   idString(sol.ID),
	}, skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, records, total, skip, limit)
}

// AddTag handles POST /solutions/:slug/tag/:name
// @Summary Attach a tag
// @Description Conflict when the tag is already attached
// @Tags Solutions
// @Produce json
// @Param slug path string true "Solution slug"
// @Param name path string true "Tag name (any raw form)"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Failure 409 {object} utils.Envelope
// @Router /solutions/{slug}/tag/{name} [post]
func (h *SolutionHandler) AddTag(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	sol, err := h.Solutions.AddTag(c.Params("slug"), pathParam(c, "name"), actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, sol)
}

// RemoveTag handles DELETE /solutions/:slug/tag/:name
// @Summary Detach a tag
// @Description NotFound when the tag is not attached
// @Tags Solutions
// @Produce json
// @Param slug path string true "Solution slug"
// @Param name path string true "Tag name (any raw form)"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/tag/{name} [delete]
func (h *SolutionHandler) RemoveTag(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	sol, err := h.Solutions.RemoveTag(c.Params("slug"), pathParam(c, "name"), actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, sol)
}
