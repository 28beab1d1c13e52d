package room

import (
	"fmt"
	"maps"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
	"github.com/kode4food/bedrock/player"
)

type (
	// State is the replicated view of a session that clients render from.
	// It is rebuilt purely from the session's events
	State struct {
		Width     int                       `json:"width"`
		Height    int                       `json:"height"`
		Rows      [][]string                `json:"rows"`
		Palette   []contract.PaletteEntry   `json:"palette"`
		Players   map[string]PlayerView     `json:"players"`
		Inventory map[string]map[string]int `json:"inventory"`
		Errors    []contract.ModuleErrored  `json:"errors"`

		spawned int
	}

	// PlayerView is a player as clients see it
	PlayerView struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
		IsJumping bool   `json:"isJumping"`
		Facing    string `json:"facing"`
	}
)

// MaxErrors bounds the module errors a State retains
const MaxErrors = 32

var stateAppliers = bedrock.Appliers[*State]{
	contract.EventBlockSet:        bedrock.MakeApplier(applyBlockSet),
	contract.EventBlockChanged:    bedrock.MakeApplier(applyBlockChanged),
	contract.EventWorldGenerated:  bedrock.MakeApplier(applyWorldGenerated),
	contract.EventEntitySpawned:   bedrock.MakeApplier(applyEntitySpawned),
	contract.EventEntityMoved:     bedrock.MakeApplier(applyEntityMoved),
	contract.EventEntityDespawned: bedrock.MakeApplier(applyEntityDespawned),
	contract.EventItemGranted:     bedrock.MakeApplier(applyItemGranted),
	contract.EventItemConsumed:    bedrock.MakeApplier(applyItemConsumed),
}

// NewState returns an empty State
func NewState() *State {
	return &State{
		Players:   map[string]PlayerView{},
		Inventory: map[string]map[string]int{},
	}
}

// ReplayState folds a session log into a fresh State
func ReplayState(evs []*bedrock.Event) *State {
	return stateAppliers.Fold(NewState(), evs)
}

// Apply folds one event into the State
func (s *State) Apply(ev *bedrock.Event) {
	stateAppliers.Apply(s, ev)
}

// Copy returns a deep copy of the State
func (s *State) Copy() *State {
	res := *s
	res.Rows = make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		res.Rows[i] = append([]string(nil), row...)
	}
	res.Palette = append([]contract.PaletteEntry(nil), s.Palette...)
	res.Players = maps.Clone(s.Players)
	res.Inventory = make(map[string]map[string]int, len(s.Inventory))
	for id, items := range s.Inventory {
		res.Inventory[id] = maps.Clone(items)
	}
	res.Errors = append([]contract.ModuleErrored(nil), s.Errors...)
	return &res
}

func (s *State) setCell(pos contract.Position, material string) {
	if pos.Y < 0 || pos.Y >= len(s.Rows) {
		return
	}
	row := s.Rows[pos.Y]
	if pos.X < 0 || pos.X >= len(row) {
		return
	}
	row[pos.X] = material
}

func (s *State) addItem(entityID, item string, qty int) {
	items, ok := s.Inventory[entityID]
	if !ok {
		items = map[string]int{}
		s.Inventory[entityID] = items
	}
	items[item] = max(0, items[item]+qty)
}

func (s *State) recordError(e contract.ModuleErrored) {
	s.Errors = append(s.Errors, e)
	if over := len(s.Errors) - MaxErrors; over > 0 {
		s.Errors = append(s.Errors[:0:0], s.Errors[over:]...)
	}
}

func applyBlockSet(
	s *State, _ *bedrock.Event, p contract.BlockSet,
) *State {
	s.setCell(p.Position, p.Material)
	return s
}

func applyBlockChanged(
	s *State, _ *bedrock.Event, p contract.BlockChanged,
) *State {
	s.setCell(p.Position, p.To)
	return s
}

func applyWorldGenerated(
	s *State, _ *bedrock.Event, p contract.WorldGenerated,
) *State {
	s.Width = p.Width
	s.Height = p.Height
	s.Rows = make([][]string, len(p.Cells))
	for i, row := range p.Cells {
		s.Rows[i] = append([]string(nil), row...)
	}
	s.Palette = append([]contract.PaletteEntry(nil), p.Palette...)
	return s
}

func applyEntitySpawned(
	s *State, _ *bedrock.Event, p contract.EntitySpawned,
) *State {
	s.spawned++
	s.Players[p.EntityID] = PlayerView{
		ID:     p.EntityID,
		Name:   fmt.Sprintf("Player %d", s.spawned),
		X:      p.Position.X,
		Y:      p.Position.Y,
		Facing: string(player.FacingRight),
	}
	return s
}

func applyEntityMoved(
	s *State, _ *bedrock.Event, p contract.EntityMoved,
) *State {
	pv, ok := s.Players[p.EntityID]
	if !ok {
		return s
	}
	pv.X = p.To.X
	pv.Y = p.To.Y
	switch p.Cause {
	case contract.MoveCauseJump:
		pv.IsJumping = true
	case contract.MoveCauseLand:
		pv.IsJumping = false
	case contract.MoveCauseMove:
		if p.To.X < p.From.X {
			pv.Facing = string(player.FacingLeft)
		} else if p.To.X > p.From.X {
			pv.Facing = string(player.FacingRight)
		}
	}
	s.Players[p.EntityID] = pv
	return s
}

func applyEntityDespawned(
	s *State, _ *bedrock.Event, p contract.EntityDespawned,
) *State {
	delete(s.Players, p.EntityID)
	return s
}

func applyItemGranted(
	s *State, _ *bedrock.Event, p contract.ItemGranted,
) *State {
	s.addItem(p.ToEntityID, p.Item, p.Quantity)
	return s
}

func applyItemConsumed(
	s *State, _ *bedrock.Event, p contract.ItemConsumed,
) *State {
	s.addItem(p.FromEntityID, p.Item, -p.Quantity)
	return s
}
