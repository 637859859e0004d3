package event

import (
	"time"
)

// All events have a shared structure to track the run they belong to.
type Event struct {
	// Every upgrade or export run has a unique ID, shared by all events it raises.
	RunID string `json:"run_id"`
	// Time when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

func NewEventForRunID(runID string) *Event {
	return &Event{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
	}
}

// RaisedEvent is implemented by every event published on the bus. HandlerName doubles as topic.
type RaisedEvent interface {
	GetEvent() *Event
	HandlerName() string
}
