// Package outboxhttp exposes the manual drain trigger.
package outboxhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/grovekeep/grove/pkg/outbox"
	"github.com/grovekeep/grove/pkg/outbox/outboxsrv"
)

// Handlers serves outbox administration endpoints.
type Handlers struct {
	drainer *outboxsrv.Drainer
}

// NewHandlers creates the outbox handlers.
func NewHandlers(drainer *outboxsrv.Drainer) *Handlers {
	return &Handlers{drainer: drainer}
}

// RegisterRoutes mounts the drain trigger. The route is internal; the
// deployment keeps it off the public ingress.
func (h *Handlers) RegisterRoutes(app *fiber.App) {
	app.Post("/internal/outbox/drain", h.handleDrain)
}

func (h *Handlers) handleDrain(c *fiber.Ctx) error {
	channel, err := outbox.ParseChannel(c.Query("channel"))
	if err != nil {
		return err
	}

	summary, err := h.drainer.Drain(c.Context(), channel)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}
