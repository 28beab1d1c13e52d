package bedrock

// eventLog is the append-only, globally ordered record of finalized events
type eventLog struct {
	events []*Event
}

func (l *eventLog) append(evs []*Event) {
	l.events = append(l.events, evs...)
}

func (l *eventLog) len() int {
	return len(l.events)
}

// all returns a deep copy of the history, so callers may mutate it freely
func (l *eventLog) all() []*Event {
	res := make([]*Event, len(l.events))
	for i, ev := range l.events {
		res[i] = ev.Clone()
	}
	return res
}
