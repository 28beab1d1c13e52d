package bedrock

import (
	"encoding/json"
	"fmt"
)

// MakeHandler decodes the Command payload into T before calling fn. A payload
// that fails to decode is reported as a handler failure
func MakeHandler[T any](fn func(Command, T) ([]EventDraft, error)) Handler {
	return func(cmd Command) ([]EventDraft, error) {
		data, err := DecodePayload[T](cmd.Payload)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd.Type, err)
		}
		return fn(cmd, data)
	}
}

// MakeListener decodes the Event payload into T before calling fn. Events
// whose payload does not decode are skipped
func MakeListener[T any](fn func(*Event, T)) Listener {
	return func(ev *Event) {
		data, err := DecodePayload[T](ev.Payload)
		if err != nil {
			return
		}
		fn(ev, data)
	}
}

// DecodePayload unmarshals a raw payload into T. An empty payload decodes to
// the zero value
func DecodePayload[T any](raw json.RawMessage) (T, error) {
	var data T
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, err
	}
	return data, nil
}

// NewCommand marshals the payload and builds a Command
func NewCommand(
	typ CommandType, payload any, meta *CommandMeta,
) (Command, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Payload: data, Meta: meta}, nil
}

// NewDraft marshals the payload and builds an EventDraft
func NewDraft(typ EventType, payload any) (EventDraft, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return EventDraft{}, err
	}
	return EventDraft{Type: typ, Payload: data}, nil
}

// MustDraft is NewDraft for payloads that are known to marshal
func MustDraft(typ EventType, payload any) EventDraft {
	d, err := NewDraft(typ, payload)
	if err != nil {
		panic(err)
	}
	return d
}
