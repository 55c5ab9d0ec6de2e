// Package model defines the core domain types for the event check-in system.
package model

import "time"

// Event represents an activity participants can register for.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Details         *string   `json:"details"`
	MaxParticipants *int      `json:"maxParticipants"`
	CreatedAt       time.Time `json:"createdAt"`
}

// IsFull reports whether registered participants have reached the cap.
// Events without a cap are never full.
func (e *Event) IsFull(registered int) bool {
	return e.MaxParticipants != nil && registered >= *e.MaxParticipants
}

// Participant is a person registered for exactly one event.
type Participant struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	SubscribedAt time.Time  `json:"subscribedAt"`
	CheckInAt    *time.Time `json:"checkInAt"`
	EventID      string     `json:"eventId"`
}

// CheckedIn reports whether the participant has already checked in.
func (p *Participant) CheckedIn() bool {
	return p.CheckInAt != nil
}

// Credentials is what an attendee presents at the door.
type Credentials struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Event      CredentialsEvent `json:"event"`
	CheckInURL string           `json:"checkInUrl"`
}

// CredentialsEvent is the event subset embedded in Credentials.
type CredentialsEvent struct {
	Title string `json:"title"`
}

// Response is the envelope for every successful response.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for every failed response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}
