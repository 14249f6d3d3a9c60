package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticketing-app/internal/store"
)

type EventHandler struct {
	catalog *store.EventCatalog
}

func NewEventHandler(catalog *store.EventCatalog) *EventHandler {
	return &EventHandler{catalog: catalog}
}

// ListEvents - Public event listing
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	events, err := h.catalog.List(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list events", nil)
	}
	return e.JSON(http.StatusOK, events)
}

// GetEvent - Public single-event lookup
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	event, err := h.catalog.FindByID(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", nil)
	}
	return e.JSON(http.StatusOK, event)
}
