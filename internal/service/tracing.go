package service

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/Shivanand-hulikatti/event-checkin/internal/service")

// endSpan marks span as failed for unexpected errors only; domain errors
// such as a full event are normal outcomes.
func endSpan(span trace.Span, err error) {
	if err != nil && !isDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrParticipantNotFound) ||
		errors.Is(err, ErrSlugConflict) ||
		errors.Is(err, ErrDuplicateRegistration) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrAlreadyCheckedIn)
}
