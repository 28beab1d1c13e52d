package gold

import (
	"sync"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
)

// Inventory tallies item grants and consumption per entity from the event
// stream
type Inventory struct {
	mu     sync.RWMutex
	counts map[string]map[string]int
}

func NewInventory() *Inventory {
	return &Inventory{counts: map[string]map[string]int{}}
}

// Subscribe attaches the tally to a Kernel. The returned function detaches
// it
func (i *Inventory) Subscribe(k *bedrock.Kernel) bedrock.Unsubscribe {
	granted := k.Subscribe(contract.EventItemGranted,
		bedrock.MakeListener(func(_ *bedrock.Event, p contract.ItemGranted) {
			i.add(p.ToEntityID, p.Item, p.Quantity)
		}),
	)
	consumed := k.Subscribe(contract.EventItemConsumed,
		bedrock.MakeListener(func(_ *bedrock.Event, p contract.ItemConsumed) {
			i.add(p.FromEntityID, p.Item, -p.Quantity)
		}),
	)
	return func() {
		granted()
		consumed()
	}
}

// Count returns how many of an item an entity holds
func (i *Inventory) Count(entityID, item string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.counts[entityID][item]
}

func (i *Inventory) add(entityID, item string, qty int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	items, ok := i.counts[entityID]
	if !ok {
		items = map[string]int{}
		i.counts[entityID] = items
	}
	items[item] = max(0, items[item]+qty)
}
