package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// pathParam returns a path parameter with percent-encoding decoded, so
// "Machine%20Learning" reaches the canonicalizer as "Machine Learning".
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// parsePage extracts the skip/limit query parameters with list defaults.
func parsePage(c *fiber.Ctx) (int, int) {
	skip, err := strconv.Atoi(c.Query("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	return skip, limit
}

// parseID parses a numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	return id, err == nil
}

// idString renders a numeric primary key the way history records store object ids.
func idString(id uint64) string {
	return strconv.FormatUint(id, 10)
}
