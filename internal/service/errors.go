package service

import (
	"errors"
	"fmt"
)

// Errors returned by the registries. Handlers map them to HTTP statuses
// with errors.Is.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrSlugConflict          = errors.New("slug already exists, consider changing the title")
	ErrDuplicateRegistration = errors.New("a participant with this email is already registered for this event")
	ErrCapacityExceeded      = errors.New("participant limit for the event has been reached")
	ErrAlreadyCheckedIn      = errors.New("participant has already checked in")
)

// CapacityError reports the cap that blocked a registration.
// errors.Is(err, ErrCapacityExceeded) holds for it.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("limit of %d participants for the event has been reached", e.Max)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
