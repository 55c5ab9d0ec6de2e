package model

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Shivanand-hulikatti/event-checkin/internal/slug"
	"github.com/google/uuid"
)

// Contract limits.
const (
	MinTitleLen  = 4
	MaxTitleLen  = 200
	MaxNameLen   = 200
	MaxEmailLen  = 254
	DefaultLimit = 10
	MaxLimit     = 100
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title           string  `json:"title"`
	Details         *string `json:"details"`
	MaxParticipants *int    `json:"maxParticipants"`
}

// Normalize trims the title and turns blank details into null.
func (r *CreateEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Details != nil {
		d := strings.TrimSpace(*r.Details)
		if d == "" {
			r.Details = nil
		} else {
			r.Details = &d
		}
	}
}

// Validate checks the request against the create-event contract.
func (r *CreateEventRequest) Validate() []FieldError {
	var errs []FieldError

	n := utf8.RuneCountInString(r.Title)
	switch {
	case n == 0:
		errs = append(errs, FieldError{"title", "required"})
	case n < MinTitleLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("must be at least %d characters", MinTitleLen)})
	case n > MaxTitleLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("must be at most %d characters", MaxTitleLen)})
	case slug.Make(r.Title) == "":
		errs = append(errs, FieldError{"title", "must contain at least one letter or digit"})
	}

	if r.MaxParticipants != nil && *r.MaxParticipants <= 0 {
		errs = append(errs, FieldError{"maxParticipants", "must be a positive integer"})
	}
	return errs
}

// RegisterRequest is the payload for registering a participant on an event.
//
// Emails are compared after Normalize, so "Ann@X.com" and "ann@x.com" are the
// same registration: the (event, email) pair is unique case-insensitively.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Normalize trims both fields and lower-cases the email so that the
// (event, email) uniqueness check is case-insensitive.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks the request against the registration contract.
func (r *RegisterRequest) Validate() []FieldError {
	var errs []FieldError

	switch {
	case r.Name == "":
		errs = append(errs, FieldError{"name", "required"})
	case utf8.RuneCountInString(r.Name) > MaxNameLen:
		errs = append(errs, FieldError{"name", fmt.Sprintf("must be at most %d characters", MaxNameLen)})
	}

	switch {
	case r.Email == "":
		errs = append(errs, FieldError{"email", "required"})
	case len(r.Email) > MaxEmailLen || !IsValidEmail(r.Email):
		errs = append(errs, FieldError{"email", "must be a valid email address"})
	}
	return errs
}

// IsValidEmail accepts a bare addr-spec with a dotted domain, e.g.
// "ann@example.com". Display names ("Ann <ann@example.com>") are rejected.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

// ParticipantQuery selects one page of an event's participants.
type ParticipantQuery struct {
	EventID string
	Page    int
	Limit   int
	Query   string
}

// Offset is the number of rows skipped before the page starts.
func (q ParticipantQuery) Offset() int {
	return q.Page * q.Limit
}

// ParseParticipantQuery builds a query from raw page/limit/query values.
// Empty page and limit fall back to 0 and DefaultLimit.
func ParseParticipantQuery(eventID, page, limit, query string) (ParticipantQuery, []FieldError) {
	q := ParticipantQuery{EventID: eventID, Limit: DefaultLimit, Query: strings.TrimSpace(query)}
	var errs []FieldError

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			errs = append(errs, FieldError{"page", "must be a non-negative integer"})
		} else {
			q.Page = n
		}
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			errs = append(errs, FieldError{"limit", fmt.Sprintf("must be an integer between 1 and %d", MaxLimit)})
		} else {
			q.Limit = n
		}
	}
	return q, errs
}

// ParseEventID validates an event identifier taken from a path.
func ParseEventID(field, raw string) (string, []FieldError) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", []FieldError{{field, "must be a valid UUID"}}
	}
	return id.String(), nil
}

// ParseParticipantID validates a participant identifier taken from a path.
func ParseParticipantID(field, raw string) (int64, []FieldError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, []FieldError{{field, "must be a positive integer"}}
	}
	return id, nil
}
