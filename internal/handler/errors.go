package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

// statusFor maps a service error to its HTTP status. Zero means the error
// is unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlugConflict),
		errors.Is(err, service.ErrDuplicateRegistration),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrAlreadyCheckedIn):
		return http.StatusConflict
	}
	return 0
}

// writeServiceError writes the error envelope for err. Unexpected errors are
// logged with the request id and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if status := statusFor(err); status != 0 {
		writeError(w, status, err.Error())
		return
	}

	logger.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("error", err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
