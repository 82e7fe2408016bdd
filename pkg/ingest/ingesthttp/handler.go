// Package ingesthttp exposes the inbound webhook over HTTP.
package ingesthttp

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/grovekeep/grove/pkg/ingest"
	"github.com/grovekeep/grove/pkg/ingest/ingestsrv"
	"github.com/grovekeep/grove/pkg/ingest/webhookauth"
)

// Handlers serves the email webhook endpoint.
type Handlers struct {
	auth    *webhookauth.Authenticator
	service *ingestsrv.Service
}

// NewHandlers creates the webhook handlers.
func NewHandlers(auth *webhookauth.Authenticator, service *ingestsrv.Service) *Handlers {
	return &Handlers{
		auth:    auth,
		service: service,
	}
}

// RegisterRoutes mounts the webhook routes on the app.
func (h *Handlers) RegisterRoutes(app *fiber.App) {
	app.Post("/webhooks/email", h.handleEmailWebhook)
}

func (h *Handlers) handleEmailWebhook(c *fiber.Ctx) error {
	if result := h.auth.Authenticate(fiberRequest{c}); !result.IsValid {
		return ingest.ErrAuthFailed()
	}

	outcome, err := h.service.Ingest(c.Context(), c.Get(fiber.HeaderContentType), c.Body())
	if err != nil {
		return err
	}

	if !outcome.Processed {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "not processed",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"leaf_id":   outcome.Leaf.ID.String(),
			"leaf_type": string(outcome.Leaf.LeafType),
			"has_media": outcome.Leaf.HasMedia(),
		},
	})
}

// fiberRequest adapts a fiber context onto the authenticator's request
// view.
type fiberRequest struct {
	c *fiber.Ctx
}

func (r fiberRequest) Header(name string) string    { return r.c.Get(name) }
func (r fiberRequest) FormValue(name string) string { return r.c.FormValue(name) }
func (r fiberRequest) UserAgent() string            { return r.c.Get(fiber.HeaderUserAgent) }

func (r fiberRequest) ClientIP() string {
	if forwarded := r.c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return r.c.IP()
}
