package bedrock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/bedrock"
)

func newTwoCommandKernel() *bedrock.Kernel {
	k := bedrock.NewKernel(bedrock.DefaultConfig())
	k.Register(CommandMine,
		func(bedrock.Command) ([]bedrock.EventDraft, error) {
			return []bedrock.EventDraft{{Type: EventMined}}, nil
		},
	)
	k.Register(CommandSmelt,
		func(bedrock.Command) ([]bedrock.EventDraft, error) {
			return []bedrock.EventDraft{{Type: EventSmelted}}, nil
		},
	)
	return k
}

func TestWildcardCompleteness(t *testing.T) {
	k := newTwoCommandKernel()

	var seen []bedrock.EventType
	k.Subscribe(bedrock.Wildcard, func(ev *bedrock.Event) {
		seen = append(seen, ev.Type)
	})

	k.Dispatch(bedrock.Command{Type: CommandMine})
	k.Dispatch(bedrock.Command{Type: CommandSmelt})

	assert.Equal(t, []bedrock.EventType{EventMined, EventSmelted}, seen)
}

func TestPublishOrder(t *testing.T) {
	k := bedrock.NewKernel(bedrock.DefaultConfig())
	k.Register(CommandMine,
		func(bedrock.Command) ([]bedrock.EventDraft, error) {
			return []bedrock.EventDraft{
				{Type: EventMined},
				{Type: EventSmelted},
			}, nil
		},
	)

	var calls []string
	record := func(name string) bedrock.Listener {
		return func(ev *bedrock.Event) {
			calls = append(calls, name+":"+string(ev.Type))
		}
	}
	k.Subscribe(bedrock.Wildcard, record("any1"))
	k.Subscribe(EventMined, record("mined1"))
	k.Subscribe(bedrock.Wildcard, record("any2"))
	k.Subscribe(EventMined, record("mined2"))
	k.Subscribe(EventSmelted, record("smelted"))

	k.Dispatch(bedrock.Command{Type: CommandMine})

	assert.Equal(t, []string{
		"mined1:Mined", "mined2:Mined", "any1:Mined", "any2:Mined",
		"smelted:Smelted", "any1:Smelted", "any2:Smelted",
	}, calls)
}

func TestListenerSeesLoggedEvent(t *testing.T) {
	k := newTwoCommandKernel()

	var logLen int
	k.Subscribe(EventMined, func(*bedrock.Event) {
		logLen = k.Len()
	})
	k.Dispatch(bedrock.Command{Type: CommandMine})
	assert.Equal(t, 1, logLen)
}

func TestUnsubscribePrecision(t *testing.T) {
	k := newTwoCommandKernel()

	var count int
	fn := func(*bedrock.Event) { count++ }

	first := k.Subscribe(EventMined, fn)
	k.Subscribe(EventMined, fn)
	assert.Equal(t, 2, k.Listeners(EventMined))

	k.Dispatch(bedrock.Command{Type: CommandMine})
	assert.Equal(t, 2, count)

	first()
	first()
	assert.Equal(t, 1, k.Listeners(EventMined))

	k.Dispatch(bedrock.Command{Type: CommandMine})
	assert.Equal(t, 3, count)
}

func TestUnsubscribeBeforeDispatch(t *testing.T) {
	k := newTwoCommandKernel()

	var called bool
	unsub := k.Subscribe(EventMined, func(*bedrock.Event) { called = true })
	unsub()

	k.Dispatch(bedrock.Command{Type: CommandMine})
	assert.False(t, called)
	assert.Zero(t, k.Listeners(EventMined))
}

func TestUnsubscribeWildcard(t *testing.T) {
	k := newTwoCommandKernel()

	var count int
	unsub := k.Subscribe(bedrock.Wildcard, func(*bedrock.Event) { count++ })
	k.Dispatch(bedrock.Command{Type: CommandMine})
	unsub()
	k.Dispatch(bedrock.Command{Type: CommandSmelt})

	assert.Equal(t, 1, count)
	assert.Zero(t, k.Listeners(bedrock.Wildcard))
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	k := newTwoCommandKernel()

	var later int
	var unsubLater bedrock.Unsubscribe
	k.Subscribe(EventMined, func(*bedrock.Event) { unsubLater() })
	unsubLater = k.Subscribe(EventMined, func(*bedrock.Event) { later++ })

	k.Dispatch(bedrock.Command{Type: CommandMine})
	k.Dispatch(bedrock.Command{Type: CommandMine})
	assert.Zero(t, later)
}

func TestListenerPanicPropagates(t *testing.T) {
	k := newTwoCommandKernel()
	k.Subscribe(EventMined, func(*bedrock.Event) {
		panic("listener broke")
	})

	assert.PanicsWithValue(t, "listener broke", func() {
		k.Dispatch(bedrock.Command{Type: CommandMine})
	})

	log := k.GetLog()
	require.Len(t, log, 1)
	assert.Equal(t, EventMined, log[0].Type)
	assert.Zero(t, k.Faults())
}
