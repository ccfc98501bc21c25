package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserSignedIn   EventType = "user_signed_in"
	EventSignInFailed   EventType = "sign_in_failed"
	EventUserSignedOut  EventType = "user_signed_out"
)

// AllEventTypes lists every type the auth service publishes.
var AllEventTypes = []EventType{EventUserRegistered, EventUserSignedIn, EventSignInFailed, EventUserSignedOut}

// Event represents an account or session change.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Subject   string            `json:"subject,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType EventType, subject string, attrs map[string]string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Attrs:     attrs,
	}
}
