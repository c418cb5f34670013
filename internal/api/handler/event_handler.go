package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// EventSource is the interface the handler uses to read the relay buffer.
type EventSource interface {
	Snapshot() []domain.RelayEvent
}

// EventHandler exposes the relayed broker events. Pure pass-through: the
// payloads are served exactly as mirrored.
type EventHandler struct {
	source EventSource
}

func NewEventHandler(source EventSource) *EventHandler {
	return &EventHandler{source: source}
}

type eventsResponse struct {
	Events []domain.RelayEvent `json:"events"`
}

// List handles GET /api/events: the buffered events, oldest first.
//
// @Summary      Recently relayed events
// @Tags         events
// @Produce      json
// @Success      200  {object}  eventsResponse
// @Router       /api/events [get]
func (h *EventHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, eventsResponse{Events: h.source.Snapshot()})
}
