package bedrock

type (
	// Applier folds one event into a value
	Applier[T any] func(T, *Event) T

	// Appliers maps event types to the Applier that handles them
	Appliers[T any] map[EventType]Applier[T]
)

// MakeApplier decodes the Event payload into Data before calling fn. Events
// whose payload does not decode leave the value unchanged
func MakeApplier[T, Data any](fn func(T, *Event, Data) T) Applier[T] {
	return func(val T, ev *Event) T {
		data, err := DecodePayload[Data](ev.Payload)
		if err != nil {
			return val
		}
		return fn(val, ev, data)
	}
}

// Apply folds the event into val if an Applier is bound to its type
func (a Appliers[T]) Apply(val T, ev *Event) T {
	if fn, ok := a[ev.Type]; ok && fn != nil {
		return fn(val, ev)
	}
	return val
}

// Fold applies each event in order, starting from val
func (a Appliers[T]) Fold(val T, evs []*Event) T {
	for _, ev := range evs {
		val = a.Apply(val, ev)
	}
	return val
}
