package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/techcompass/tech-compass/internal/services"
	"github.com/techcompass/tech-compass/internal/types"
	"github.com/techcompass/tech-compass/internal/utils"
)

// HistoryHandler handles the audit trail routes
type HistoryHandler struct {
	History *services.HistoryService
}

// List handles GET /history
// @Summary Query the change history
// @Description Filter by object type, id, name substring, change type, actor and time window; newest-first
// @Tags History
// @Produce json
// @Param object_type query string false "Object type (solution, category, tag, user, site_config)"
// @Param object_id query string false "Object id"
// @Param object_name query string false "Case-insensitive name substring"
// @Param change_type query string false "create, update or delete"
// @Param username query string false "Acting username"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Security BearerAuth
// @Success 200 {object} utils.Envelope
// @Failure 400 {object} utils.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	skip, limit := parsePage(c)

	filter := services.HistoryFilter{
		ObjectType: c.Query("object_type"),
		ObjectID:   c.Query("object_id"),
		ObjectName: c.Query("object_name"),
		ChangeType: c.Query("change_type"),
		Username:   c.Query("username"),
	}
	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return types.InvalidArgument("history.validation.from", "'from' must be an RFC3339 timestamp")
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return types.InvalidArgument("history.validation.to", "'to' must be an RFC3339 timestamp")
	}

	records, total, err := h.History.List(filter, skip, limit)
	if err != nil {
		return err
	}
	return utils.ListResponse(c, records, total, skip, limit)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
