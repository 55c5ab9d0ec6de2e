package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
	"github.com/go-chi/chi/v5"
)

// EventHandler serves the /events routes.
type EventHandler struct {
	svc    *service.EventService
	logger *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{svc: svc, logger: logger}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeData(w, http.StatusOK, fmt.Sprintf("There are %d events.", len(events)), events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, errs := model.ParseEventID("id", chi.URLParam(r, "id"))
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	event, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Event found.", event)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	event, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "Event created.", event)
}
