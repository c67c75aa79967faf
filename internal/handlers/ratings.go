package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/middleware"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// RatingHandler handles per-solution rating routes
type RatingHandler struct {
	Ratings *services.RatingService
}

type ratingBody struct {
	Score   types.FlexUint64 `json:"score" form:"score"`
	Comment string           `json:"comment" form:"comment"`
}

// ListForSolution handles GET /solutions/:slug/ratings
// @Summary List ratings for a solution
// @Tags Ratings
// @Produce json
// @Param slug path string true "Solution slug"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/ratings [get]
func (h *RatingHandler) ListForSolution(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	ratings, total, err := h.Ratings.ListForSolution(c.Params("slug"), skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, ratings, total, skip, limit)
}

// Summary handles GET /solutions/:slug/ratings/summary
// @Summary Rating summary for a solution
// @Description Average score, total count and a 1-5 histogram
// @Tags Ratings
// @Produce json
// @Param slug path string true "Solution slug"
// @Success 200 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/ratings/summary [get]
func (h *RatingHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.Ratings.Summary(c.Params("slug"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

// Upsert handles POST /solutions/:slug/ratings
// @Summary Rate a solution
// @Description One rating per user and solution; posting again replaces the previous score
// @Tags Ratings
// @Accept json
// @Produce json
// @Param slug path string true "Solution slug"
// @Param body body ratingBody true "Rating"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /solutions/{slug}/ratings [post]
func (h *RatingHandler) Upsert(c *fiber.Ctx) error {
	var body ratingBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("rating.validation.input", "invalid rating payload")
	}
	actor := middleware.CurrentUser(c)
	rating, err := h.Ratings.Upsert(c.Params("slug"), actor.Username, int(body.Score.Uint64()), body.Comment)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rating)
}

// My handles GET /ratings/my
// @Summary List my ratings
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Router /ratings/my [get]
func (h *RatingHandler) My(c *fiber.Ctx) error {
	skip, limit := parsePage(c)
	actor := middleware.CurrentUser(c)
	ratings, total, err := h.Ratings.ListByUser(actor.Username, skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, ratings, total, skip, limit)
}

// Update handles PUT /ratings/:id
// @Summary Update a rating
// @Description Author or superuser only
// @Tags Ratings
// @Accept json
// @Produce json
// @Param id path string true "Rating id"
// @Param body body ratingBody true "Rating"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /ratings/{id} [put]
func (h *RatingHandler) Update(c *fiber.Ctx) error {
	var body ratingBody
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidArgument("rating.validation.input", "invalid rating payload")
	}
	actor := middleware.CurrentUser(c)
	rating, err := h.Ratings.Update(c.Params("id"), int(body.Score.Uint64()), body.Comment, actor)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, rating)
}

// Delete handles DELETE /ratings/:id
// @Summary Delete a rating
// @Tags Ratings
// @Param id path string true "Rating id"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} utils.Envelope
// @Failure 404 {object} utils.Envelope
// @Router /ratings/{id} [delete]
func (h *RatingHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.Ratings.Delete(c.Params("id"), actor); err != nil {
		return err
	}
	return utils.DeletedResponse(c)
}
