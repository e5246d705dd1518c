package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the category of audit event
type EventType string

const (
	EventTypeSubscriberCreate EventType = "subscriber.create"
	EventTypeSubscriberUpdate EventType = "subscriber.update"
	EventTypeUsageRecord      EventType = "usage.record"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// AuditEvent represents a single audit log entry
type AuditEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Subscriber the event is about
	Subscriber  string `json:"subscriber"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Plan        string `json:"plan,omitempty"`

	Message      string                 `json:"message,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Changes      *ChangeDetails         `json:"changes,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ChangeDetails holds before/after values for an update
type ChangeDetails struct {
	Before map[string]interface{} `json:"before,omitempty"`
	After  map[string]interface{} `json:"after,omitempty"`
}

// NewEvent creates an event stamped with a fresh ID and the current time
func NewEvent(eventType EventType, status EventStatus) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		Metadata:  make(map[string]interface{}),
	}
}

// Empty reports whether nothing changed
func (c *ChangeDetails) Empty() bool {
	return c == nil || (len(c.Before) == 0 && len(c.After) == 0)
}
