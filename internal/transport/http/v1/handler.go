// Package v1 provides the HTTP handlers for the chat API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flatout-solutions/rental-assistant/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/sessions", h.CreateSession)
	e.POST("/v1/sessions/:session_id/messages", h.SendMessage)
	e.POST("/v1/sessions/:session_id/advance", h.Advance)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)

	e.GET("/healthz", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
