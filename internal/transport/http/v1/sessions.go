package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// CreateSession opens a new chat session.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	session, err := h.service.CreateSession(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, domain.CreateSessionResponse{SessionID: session.SessionID})
}

// SendMessage accepts a user turn and starts a run. The run is processed
// asynchronously; callers poll the advance endpoint for progress.
// POST /v1/sessions/:session_id/messages
func (h *Handler) SendMessage(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req domain.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	resp, err := h.service.SendMessage(c.Request().Context(), sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrRunAlreadyActive):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusAccepted, resp)
}

// Advance performs one polling step for the session's active run.
// POST /v1/sessions/:session_id/advance
func (h *Handler) Advance(c echo.Context) error {
	sessionID := c.Param("session_id")

	result, err := h.service.Advance(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GetSessionMessages retrieves the session's message log.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	resp, err := h.service.ListMessages(c.Request().Context(), sessionID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}
