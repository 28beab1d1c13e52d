package bedrock

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Kernel routes commands to their handlers, finalizes the resulting drafts
// into events, journals them, and publishes them to subscribers. A Kernel
// belongs to a single session and is not safe for concurrent use
type Kernel struct {
	config    Config
	registry  *registry
	sequencer *sequencer
	log       *eventLog
	bus       *bus
	faults    atomic.Int64
}

// ErrHandlerPanic wraps the value recovered from a panicking handler
var ErrHandlerPanic = errors.New("command handler panicked")

// NewKernel creates a Kernel with an empty log, sequencer, and set of
// subscriptions
func NewKernel(cfg Config) *Kernel {
	return &Kernel{
		config:    cfg.withDefaults(),
		registry:  newRegistry(),
		sequencer: newSequencer(),
		log:       &eventLog{},
		bus:       newBus(),
	}
}

// Register binds a handler to a command type, replacing any prior binding
func (k *Kernel) Register(typ CommandType, h Handler) {
	k.registry.register(typ, h)
}

// Subscribe registers a listener for one event type, or for every type when
// given Wildcard
func (k *Kernel) Subscribe(typ EventType, l Listener) Unsubscribe {
	return k.bus.subscribe(typ, l)
}

// Dispatch runs the command through its handler and returns copies of the
// events it produced. Unregistered commands and failed handlers yield no
// events and leave the Kernel untouched. Listener panics are not recovered
// and will surface here after the events have been logged
func (k *Kernel) Dispatch(cmd Command) []*Event {
	h, ok := k.registry.lookup(cmd.Type)
	if !ok {
		return []*Event{}
	}

	drafts, err := k.invoke(h, cmd)
	if err != nil {
		k.fault(cmd, err)
		return []*Event{}
	}

	if cmd.Meta != nil {
		meta := *cmd.Meta
		cmd.Meta = &meta
	}
	evs := make([]*Event, len(drafts))
	for i, d := range drafts {
		evs[i] = k.finalize(cmd, d)
	}
	k.log.append(evs)
	for _, ev := range evs {
		k.bus.publish(ev)
	}
	res := make([]*Event, len(evs))
	for i, ev := range evs {
		res[i] = ev.Clone()
	}
	return res
}

// GetLog returns a copy of every event recorded so far, in dispatch order
func (k *Kernel) GetLog() []*Event {
	return k.log.all()
}

// Len returns the number of events in the log
func (k *Kernel) Len() int {
	return k.log.len()
}

// Sequence returns the last sequence issued for an aggregate, or 0 if the
// aggregate has not been seen
func (k *Kernel) Sequence(aggID string) int64 {
	return k.sequencer.current(aggID)
}

// Faults returns the number of handler failures isolated by this Kernel
func (k *Kernel) Faults() int64 {
	return k.faults.Load()
}

// Listeners returns the number of active subscriptions for an event type
func (k *Kernel) Listeners(typ EventType) int {
	return k.bus.count(typ)
}

func (k *Kernel) invoke(h Handler, cmd Command) (res []EventDraft, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(cmd)
}

func (k *Kernel) finalize(cmd Command, d EventDraft) *Event {
	aggID := resolveAggregate(cmd, d)
	ts := d.Meta.Timestamp
	if ts.IsZero() {
		ts = k.config.Clock()
	}
	return &Event{
		Type:    d.Type,
		Payload: clonePayload(d.Payload),
		Meta: EventMeta{
			AggregateID: aggID,
			Sequence:    k.sequencer.next(aggID),
			Timestamp:   ts,
			Cause: &Cause{
				CommandType: cmd.Type,
				CommandMeta: cmd.Meta,
			},
		},
	}
}

func (k *Kernel) fault(cmd Command, err error) {
	k.faults.Add(1)
	k.config.Logger.Warn("command handler failed",
		zap.String("command_type", string(cmd.Type)),
		zap.String("agg_id", cmd.AggregateID()),
		zap.Error(err),
	)
	if k.config.OnFault != nil {
		k.config.OnFault(Fault{Command: cmd, Err: err})
	}
}

// resolveAggregate picks the aggregate for a draft: the draft's own hint,
// then the command's hint, then the draft's event type
func resolveAggregate(cmd Command, d EventDraft) string {
	candidates := [...]string{
		d.Meta.AggregateID,
		cmd.AggregateID(),
		string(d.Type),
	}
	for _, id := range candidates {
		if id != "" {
			return id
		}
	}
	return ""
}
