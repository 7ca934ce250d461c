package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of a procedure invocation
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event records one stored procedure invocation. Params must already be
// redacted by the caller.
type Event struct {
	ID         string         `json:"id"`
	Procedure  string         `json:"procedure"`
	Params     map[string]any `json:"params"`
	Outcome    Outcome        `json:"outcome"`
	Error      string         `json:"error,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// NewEvent creates an event stamped with a fresh id and the current time
func NewEvent(procedure string, params map[string]any, err error) Event {
	event := Event{
		ID:         uuid.NewString(),
		Procedure:  procedure,
		Params:     params,
		Outcome:    OutcomeSuccess,
		OccurredAt: time.Now().UTC(),
	}
	if err != nil {
		event.Outcome = OutcomeFailure
		event.Error = err.Error()
	}
	return event
}

// Publisher delivers audit events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
