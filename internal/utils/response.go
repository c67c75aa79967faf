package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the standard response wrapper for detail and list endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Total   *int64      `json:"total,omitempty"`
	Skip    *int        `json:"skip,omitempty"`
	Limit   *int        `json:"limit,omitempty"`
}

// SuccessResponse sends a detail response in the standard envelope.
func SuccessResponse(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Data:    data,
	})
}

// ListResponse sends a paginated list response with total/skip/limit set.
func ListResponse(c *fiber.Ctx, data interface{}, total int64, skip, limit int) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Data:    data,
		Total:   &total,
		Skip:    &skip,
		Limit:   &limit,
	})
}

// ErrorResponse sends an error in the standard envelope.
func ErrorResponse(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Detail:  detail,
	})
}

// DeletedResponse sends the bare 204 used by delete endpoints.
func DeletedResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
