package handler

import (
	"github.com/gofiber/fiber/v2"
)

type GetHealthResponse struct {
	IsServerRunning   bool `json:"isServerRunning"`
	IsGameLoopRunning bool `json:"isGameLoopRunning"`
}

// GetHealth godoc
//
//	@Summary		Get information on status of the server and the game loop
//	@Produce		application/json
//	@Success		200	{object}	GetHealthResponse
//	@Router			/health [get]
func GetHealth[C any](provider Provider[C]) func(c *fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetHealthResponse{
			IsServerRunning:   true,
			IsGameLoopRunning: provider.IsGameLoopRunning(),
		})
	}
}
