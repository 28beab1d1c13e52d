// Package gold is a sample content mod: players mine gold into their
// inventory and smelt it into bars
package gold

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
)

type (
	// Mod owns the gold.mine and gold.smelt commands. Smelting is gated on
	// the inventory tally: without gold it fails, otherwise it consumes the
	// gold before reporting the ability
	Mod struct {
		inventory *Inventory
	}

	smeltArgs struct {
		Bars int `json:"bars"`
	}
)

const (
	ItemGold       = "gold"
	AbilitySmelt   = "smelt-gold"
	BarsPerSmelt   = 1
	GoldPerMine    = 1
	GoldPerSmelted = 1
)

var (
	// ErrNoGold is returned when smelting without gold in the inventory
	ErrNoGold = errors.New("no gold to smelt")

	// ErrPlayerRequired is returned for commands that name no player
	ErrPlayerRequired = errors.New("player is required")
)

func NewMod() *Mod {
	return &Mod{inventory: NewInventory()}
}

// Inventory returns the tally the Mod checks when smelting
func (m *Mod) Inventory() *Inventory {
	return m.inventory
}

// Register binds the gold commands and attaches the inventory tally
func (m *Mod) Register(k *bedrock.Kernel) bedrock.Unsubscribe {
	k.Register(contract.CommandMineGold, bedrock.MakeHandler(m.mine))
	k.Register(contract.CommandSmeltGold, bedrock.MakeHandler(m.smelt))
	return m.inventory.Subscribe(k)
}

func (m *Mod) mine(
	_ bedrock.Command, p contract.MineGold,
) ([]bedrock.EventDraft, error) {
	if p.Player == "" {
		return nil, ErrPlayerRequired
	}
	d, err := bedrock.NewDraft(contract.EventItemGranted, contract.ItemGranted{
		ToEntityID: p.Player,
		Item:       ItemGold,
		Quantity:   GoldPerMine,
	})
	if err != nil {
		return nil, err
	}
	return []bedrock.EventDraft{
		d.WithAggregate(contract.InventoryAggregate(p.Player)),
	}, nil
}

func (m *Mod) smelt(
	_ bedrock.Command, p contract.SmeltGold,
) ([]bedrock.EventDraft, error) {
	if p.Player == "" {
		return nil, ErrPlayerRequired
	}
	if m.inventory.Count(p.Player, ItemGold) < GoldPerSmelted {
		return nil, fmt.Errorf("%w: %s", ErrNoGold, p.Player)
	}
	consumed, err := bedrock.NewDraft(contract.EventItemConsumed,
		contract.ItemConsumed{
			FromEntityID: p.Player,
			Item:         ItemGold,
			Quantity:     GoldPerSmelted,
		},
	)
	if err != nil {
		return nil, err
	}
	args, err := json.Marshal(smeltArgs{Bars: BarsPerSmelt})
	if err != nil {
		return nil, err
	}
	used, err := bedrock.NewDraft(contract.EventAbilityUsed,
		contract.AbilityUsed{
			EntityID: p.Player,
			Ability:  AbilitySmelt,
			Args:     args,
		},
	)
	if err != nil {
		return nil, err
	}
	return []bedrock.EventDraft{
		consumed.WithAggregate(contract.InventoryAggregate(p.Player)),
		used.WithAggregate(contract.EntityAggregate(p.Player)),
	}, nil
}

// Mine dispatches gold.mine for a player
func Mine(k *bedrock.Kernel, playerID string) []*bedrock.Event {
	return dispatch(k, contract.CommandMineGold,
		contract.MineGold{Player: playerID}, playerID,
	)
}

// Smelt dispatches gold.smelt for a player
func Smelt(k *bedrock.Kernel, playerID string) []*bedrock.Event {
	return dispatch(k, contract.CommandSmeltGold,
		contract.SmeltGold{Player: playerID}, playerID,
	)
}

func dispatch(
	k *bedrock.Kernel, typ bedrock.CommandType, payload any, playerID string,
) []*bedrock.Event {
	cmd, err := bedrock.NewCommand(typ, payload, &bedrock.CommandMeta{
		ActorID:     playerID,
		AggregateID: contract.InventoryAggregate(playerID),
	})
	if err != nil {
		return []*bedrock.Event{}
	}
	return k.Dispatch(cmd)
}
