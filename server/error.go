package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"

	"pkg.world.dev/world-engine/nucleus/ecs"
	"pkg.world.dev/world-engine/nucleus/tag"
)

type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Message string `json:"message"`
}

// statusOf maps engine errors to HTTP status codes. Anything unrecognized is an internal error.
func statusOf(err error) int {
	var e *fiber.Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case eris.Is(err, ecs.ErrUnknownEntity), eris.Is(err, tag.ErrUnknownName):
		return fiber.StatusNotFound
	case eris.Is(err, tag.ErrEmptyName):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

var ErrorHandler = func(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(statusOf(err)).JSON(ErrorResponse{Error: Error{Message: err.Error()}})
}
