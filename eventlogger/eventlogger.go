package eventlogger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one entry of a ledger's activity feed.
type Event struct {
	ID        uuid.UUID         `json:"id,omitempty"`
	Type      string            `json:"event_type,omitempty"`
	LedgerID  uuid.NullUUID     `json:"ledger_id"`
	ActorID   uuid.NullUUID     `json:"actor_id"`
	Data      any               `json:"event_data,omitempty"`
	Metadata  map[string]string `json:"event_metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventOption func(*Event)

func WithType(eventType string) EventOption {
	return func(e *Event) {
		e.Type = eventType
	}
}

func WithLedger(ledgerID uuid.UUID) EventOption {
	return func(e *Event) {
		e.LedgerID = uuid.NullUUID{UUID: ledgerID, Valid: true}
	}
}

func WithActor(userID uuid.UUID) EventOption {
	return func(e *Event) {
		if userID == uuid.Nil {
			return
		}
		e.ActorID = uuid.NullUUID{UUID: userID, Valid: true}
	}
}

func WithData(data any) EventOption {
	return func(e *Event) {
		e.Data = data
	}
}

func WithMetadata(metadata map[string]string) EventOption {
	return func(e *Event) {
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}
}

func NewEvent(opts ...EventOption) Event {
	e := Event{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

type EventLogger interface {
	Save(ctx context.Context, e Event) error
	ForLedger(ctx context.Context, ledgerID uuid.UUID, limit int) ([]Event, error)
}

// Sink accepts events without blocking the caller.
type Sink interface {
	Log(event Event) bool
}
