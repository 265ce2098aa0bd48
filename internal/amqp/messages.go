package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"spentify/internal/core"
)

// EventType names a committed record change
type EventType string

const (
	RecordCreated EventType = "record.created"
	RecordDeleted EventType = "record.deleted"
)

// RecordEvent announces a record change. Deleted events carry only the ids.
type RecordEvent struct {
	Type        EventType `json:"type"`
	RecordID    string    `json:"record_id"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email,omitempty"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        string    `json:"date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRecordCreatedEvent builds the event published after a record is stored
func NewRecordCreatedEvent(user core.User, r core.Record) *RecordEvent {
	return &RecordEvent{
		Type:        RecordCreated,
		RecordID:    r.ID,
		UserID:      user.ID,
		UserEmail:   user.Email,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    string(r.Category),
		Date:        r.Date.String(),
		Timestamp:   time.Now().UTC(),
	}
}

// NewRecordDeletedEvent builds the event published after a record is removed
func NewRecordDeletedEvent(userID, recordID string) *RecordEvent {
	return &RecordEvent{
		Type:      RecordDeleted,
		RecordID:  recordID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and checks an event body
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case RecordCreated, RecordDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.RecordID == "" || e.UserID == "" {
		return nil, fmt.Errorf("event %s is missing record or user id", e.Type)
	}
	return &e, nil
}
