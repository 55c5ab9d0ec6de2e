package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
	"github.com/go-chi/chi/v5"
)

// ParticipantHandler serves the /participants routes.
type ParticipantHandler struct {
	svc    *service.ParticipantService
	logger *slog.Logger
}

// NewParticipantHandler constructs a ParticipantHandler.
func NewParticipantHandler(svc *service.ParticipantService, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{svc: svc, logger: logger}
}

// ListParticipants handles GET /participants/{id}?page=&limit=&query=
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, errs := model.ParseEventID("eventId", chi.URLParam(r, "id"))
	params := r.URL.Query()
	q, queryErrs := model.ParseParticipantQuery(
		eventID,
		params.Get("page"),
		params.Get("limit"),
		params.Get("query"),
	)
	if errs = append(errs, queryErrs...); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	participants, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeData(w, http.StatusOK,
		fmt.Sprintf("There are %d participants in the event.", len(participants)), participants)
}

// Credentials handles GET /participants/{id}/credentials
func (h *ParticipantHandler) Credentials(w http.ResponseWriter, r *http.Request) {
	id, errs := model.ParseParticipantID("id", chi.URLParam(r, "id"))
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	creds, err := h.svc.Credentials(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Participant credentials found.", creds)
}

// Register handles POST /participants/{id}
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, errs := model.ParseEventID("eventId", chi.URLParam(r, "id"))
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		invalidBody(w, err)
		return
	}
	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	p, err := h.svc.Register(r.Context(), eventID, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "Participant registered for the event.", p)
}

// CheckIn handles GET /participants/{id}/check-in
func (h *ParticipantHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, errs := model.ParseParticipantID("id", chi.URLParam(r, "id"))
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	p, err := h.svc.CheckIn(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Check-in completed.", p)
}
