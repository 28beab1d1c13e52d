// Package player tracks player entities for a session and owns the spawn,
// despawn, control input, and tick commands
package player

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kode4food/bedrock/contract"
)

type (
	// Facing is the horizontal direction a player last moved in
	Facing string

	// Config describes the movement envelope for players in a world
	Config struct {
		WorldWidth   int
		SurfaceY     int
		JumpHeight   int
		JumpDuration time.Duration
	}

	// State is the authoritative record of one player
	State struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		X         int       `json:"x"`
		Y         int       `json:"y"`
		IsJumping bool      `json:"isJumping"`
		Facing    Facing    `json:"facing"`
		LandsAt   time.Time `json:"landsAt,omitzero"`
	}

	// Manager owns the players of one session. It is not safe for
	// concurrent use; the session's dispatch thread drives it
	Manager struct {
		config    Config
		players   map[string]*State
		nextSpawn int
	}
)

const (
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

const (
	DefaultJumpHeight   = 1
	DefaultJumpDuration = 500 * time.Millisecond
)

var (
	// ErrAlreadySpawned is returned when spawning an ID that is present
	ErrAlreadySpawned = errors.New("player already spawned")

	// ErrWorldWidth is returned for a Config with no usable width
	ErrWorldWidth = errors.New("world width must be positive")
)

func DefaultConfig(worldWidth, surfaceY int) Config {
	return Config{
		WorldWidth:   worldWidth,
		SurfaceY:     surfaceY,
		JumpHeight:   DefaultJumpHeight,
		JumpDuration: DefaultJumpDuration,
	}
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.WorldWidth <= 0 {
		return nil, ErrWorldWidth
	}
	if cfg.JumpHeight <= 0 {
		cfg.JumpHeight = DefaultJumpHeight
	}
	if cfg.JumpDuration <= 0 {
		cfg.JumpDuration = DefaultJumpDuration
	}
	return &Manager{
		config:  cfg,
		players: map[string]*State{},
	}, nil
}

// Spawn places a new player. Without an explicit position, players are
// spread across the surface row in spawn order
func (m *Manager) Spawn(id string, at *contract.Position) (State, error) {
	if _, ok := m.players[id]; ok {
		return State{}, fmt.Errorf("%w: %s", ErrAlreadySpawned, id)
	}
	x := m.nextSpawn % m.config.WorldWidth
	y := m.config.SurfaceY
	m.nextSpawn++
	if at != nil {
		x = m.clampX(at.X)
		y = at.Y
	}
	st := &State{
		ID:     id,
		Name:   fmt.Sprintf("Player %d", m.nextSpawn),
		X:      x,
		Y:      y,
		Facing: FacingRight,
	}
	m.players[id] = st
	return *st, nil
}

// Remove deletes a player, reporting whether it existed
func (m *Manager) Remove(id string) bool {
	if _, ok := m.players[id]; !ok {
		return false
	}
	delete(m.players, id)
	return true
}

// Get returns a copy of a player's state
func (m *Manager) Get(id string) (State, bool) {
	st, ok := m.players[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// All returns copies of every player, ordered by ID
func (m *Manager) All() []State {
	res := make([]State, 0, len(m.players))
	for _, st := range m.players {
		res = append(res, *st)
	}
	slices.SortFunc(res, func(a, b State) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

// Move shifts a player one column left (-1) or right (1), clamped to the
// world bounds
func (m *Manager) Move(id string, dir int) (from, to State, ok bool) {
	st, found := m.players[id]
	if !found || (dir != -1 && dir != 1) {
		return State{}, State{}, false
	}
	from = *st
	st.X = m.clampX(st.X + dir)
	if dir < 0 {
		st.Facing = FacingLeft
	} else {
		st.Facing = FacingRight
	}
	return from, *st, true
}

// Jump lifts a grounded player. Jumping again before landing is ignored
func (m *Manager) Jump(id string, now time.Time) (from, to State, ok bool) {
	st, found := m.players[id]
	if !found || st.IsJumping {
		return State{}, State{}, false
	}
	from = *st
	st.Y = max(0, m.config.SurfaceY-m.config.JumpHeight)
	st.IsJumping = true
	st.LandsAt = now.Add(m.config.JumpDuration)
	return from, *st, true
}

// Land returns an airborne player to the surface row
func (m *Manager) Land(id string) (from, to State, ok bool) {
	st, found := m.players[id]
	if !found || !st.IsJumping {
		return State{}, State{}, false
	}
	from = *st
	st.Y = m.config.SurfaceY
	st.IsJumping = false
	st.LandsAt = time.Time{}
	return from, *st, true
}

// Due lists airborne players whose jump has run its course, ordered by ID
func (m *Manager) Due(now time.Time) []string {
	var res []string
	for id, st := range m.players {
		if st.IsJumping && !now.Before(st.LandsAt) {
			res = append(res, id)
		}
	}
	slices.Sort(res)
	return res
}

func (m *Manager) clampX(x int) int {
	return max(0, min(m.config.WorldWidth-1, x))
}

// Position returns the state's coordinates
func (s State) Position() contract.Position {
	return contract.Position{X: s.X, Y: s.Y}
}
