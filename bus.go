package bedrock

import "slices"

type (
	// bus fans finalized events out to type-specific listeners and then to
	// wildcard listeners, each group in registration order
	bus struct {
		byType   map[EventType][]*subscription
		wildcard []*subscription
	}

	// subscription is one Subscribe call. Two subscriptions of the same
	// function are distinct registrations
	subscription struct {
		listener Listener
		removed  bool
	}
)

func newBus() *bus {
	return &bus{byType: map[EventType][]*subscription{}}
}

func (b *bus) subscribe(typ EventType, l Listener) Unsubscribe {
	sub := &subscription{listener: l}
	if typ == Wildcard {
		b.wildcard = append(b.wildcard, sub)
	} else {
		b.byType[typ] = append(b.byType[typ], sub)
	}
	return func() {
		if sub.removed {
			return
		}
		sub.removed = true
		if typ == Wildcard {
			b.wildcard = without(b.wildcard, sub)
			return
		}
		subs := without(b.byType[typ], sub)
		if len(subs) == 0 {
			delete(b.byType, typ)
			return
		}
		b.byType[typ] = subs
	}
}

// publish invokes listeners synchronously, each with its own copy of the
// event. Listener panics are not recovered. A listener removed while an
// event is being delivered is not called for that event; one added during
// delivery starts with the next
func (b *bus) publish(ev *Event) {
	for _, sub := range slices.Clone(b.byType[ev.Type]) {
		if !sub.removed {
			sub.listener(ev.Clone())
		}
	}
	for _, sub := range slices.Clone(b.wildcard) {
		if !sub.removed {
			sub.listener(ev.Clone())
		}
	}
}

func (b *bus) count(typ EventType) int {
	if typ == Wildcard {
		return len(b.wildcard)
	}
	return len(b.byType[typ])
}

func without(subs []*subscription, sub *subscription) []*subscription {
	return slices.DeleteFunc(slices.Clone(subs), func(s *subscription) bool {
		return s == sub
	})
}
