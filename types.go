package bedrock

import (
	"encoding/json"
	"time"
)

type (
	// CommandType names a kind of intent submitted to a Kernel
	CommandType string

	// EventType names a kind of fact emitted by a Kernel
	EventType string

	// CommandMeta carries optional routing and tracing hints for a Command
	CommandMeta struct {
		IssuedAt      time.Time `json:"issued_at,omitzero"`
		CorrelationID string    `json:"correlation_id,omitempty"`
		ActorID       string    `json:"actor_id,omitempty"`
		ControllerID  string    `json:"controller_id,omitempty"`
		AggregateID   string    `json:"agg_id,omitempty"`
	}

	// Command is a request for the system to do something. A nil Meta means
	// the caller supplied no metadata
	Command struct {
		Type    CommandType     `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
		Meta    *CommandMeta    `json:"meta,omitempty"`
	}

	// DraftMeta holds the metadata a handler may pin on a draft. Zero values
	// are treated as absent
	DraftMeta struct {
		AggregateID string
		Timestamp   time.Time
	}

	// EventDraft is an event proposal returned by a Handler. It becomes an
	// Event only once the Kernel finalizes it
	EventDraft struct {
		Type    EventType
		Payload json.RawMessage
		Meta    DraftMeta
	}

	// Cause links an Event back to the Command that produced it
	Cause struct {
		CommandType CommandType  `json:"command_type"`
		CommandMeta *CommandMeta `json:"command_meta,omitempty"`
	}

	// EventMeta is assigned by the Kernel during finalization
	EventMeta struct {
		AggregateID string    `json:"agg_id"`
		Sequence    int64     `json:"seq"`
		Timestamp   time.Time `json:"ts"`
		Cause       *Cause    `json:"cause,omitempty"`
	}

	// Event is an immutable fact recorded in the Kernel's log
	Event struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
		Meta    EventMeta       `json:"meta"`
	}

	// Handler translates a Command into zero or more drafts. Returning an
	// error (or panicking) discards the whole batch
	Handler func(Command) ([]EventDraft, error)

	// Listener observes finalized events as they are published
	Listener func(*Event)

	// Unsubscribe removes the registration that produced it. Calling it more
	// than once has no further effect
	Unsubscribe func()
)

// Wildcard subscribes a Listener to every event type
const Wildcard EventType = "*"

// WithAggregate returns a copy of the draft pinned to the given aggregate
func (d EventDraft) WithAggregate(aggID string) EventDraft {
	d.Meta.AggregateID = aggID
	return d
}

// WithTimestamp returns a copy of the draft carrying an explicit timestamp
func (d EventDraft) WithTimestamp(ts time.Time) EventDraft {
	d.Meta.Timestamp = ts
	return d
}

// AggregateID returns the command's aggregate hint, or an empty string
func (c Command) AggregateID() string {
	if c.Meta == nil {
		return ""
	}
	return c.Meta.AggregateID
}

// Clone returns a deep copy of the Event that shares no memory with the
// original
func (e *Event) Clone() *Event {
	res := *e
	res.Payload = clonePayload(e.Payload)
	if e.Meta.Cause != nil {
		cause := *e.Meta.Cause
		if cause.CommandMeta != nil {
			meta := *cause.CommandMeta
			cause.CommandMeta = &meta
		}
		res.Meta.Cause = &cause
	}
	return &res
}

func clonePayload(p json.RawMessage) json.RawMessage {
	if p == nil {
		return nil
	}
	return append(json.RawMessage(nil), p...)
}
