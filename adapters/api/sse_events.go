package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// SSEEventType defines the event names on the run stream
type SSEEventType string

const (
	// EventTypeSnapshot is emitted after every completed iteration
	EventTypeSnapshot SSEEventType = "snapshot"
	// EventTypeVerdict is emitted exactly once at run termination
	EventTypeVerdict SSEEventType = "verdict"
	// EventTypeRunFailed is emitted when a run aborts before a verdict
	EventTypeRunFailed SSEEventType = "run_failed"
)

// SSEEvent represents a server-sent event on the run stream
type SSEEvent struct {
	EventType SSEEventType `json:"event_type"`
	RunID     string       `json:"run_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Data      interface{}  `json:"data"`
}

// NewSSEEvent builds an event stamped with the current time
func NewSSEEvent(eventType SSEEventType, runID string, data interface{}) SSEEvent {
	return SSEEvent{
		EventType: eventType,
		RunID:     runID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// ToSSEFormat converts the event to SSE wire format
func (e *SSEEvent) ToSSEFormat() string {
	eventData := map[string]interface{}{
		"event_type": e.EventType,
		"timestamp":  e.Timestamp,
		"data":       e.Data,
	}
	if e.RunID != "" {
		eventData["run_id"] = e.RunID
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		// Fallback to basic format
		return fmt.Sprintf("event: %s\ndata: %s\n\n", e.EventType, "error marshalling event")
	}

	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.EventType, string(jsonData))
}
