package room

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kode4food/bedrock"
)

// Manager tracks the open rooms of a process and remembers the logs of
// recently closed ones
type Manager struct {
	config Config
	mu     sync.Mutex
	rooms  map[string]*Room
	recent *recentCache[[]*bedrock.Event]
}

var (
	ErrRoomExists   = errors.New("room already open")
	ErrRoomNotFound = errors.New("room not found")
)

// NewManager creates a Manager whose rooms share cfg. recentSize bounds how
// many closed logs are retained
func NewManager(cfg Config, recentSize int) *Manager {
	return &Manager{
		config: cfg,
		rooms:  map[string]*Room{},
		recent: newRecentCache[[]*bedrock.Event](recentSize),
	}
}

// Open starts a room for the session id
func (m *Manager) Open(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomExists, id)
	}
	r, err := Open(id, m.config)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = r
	return r, nil
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Rooms lists the open session ids, in order
func (m *Manager) Rooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.rooms))
}

// Close ends a room and retains its log
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	log, err := r.Close(ctx)
	if log != nil {
		m.recent.Put(id, log)
	}
	return err
}

// CloseAll ends every open room
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range m.Rooms() {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recent returns the log of a recently closed room
func (m *Manager) Recent(id string) ([]*bedrock.Event, bool) {
	log, ok := m.recent.Get(id)
	if !ok {
		return nil, false
	}
	res := make([]*bedrock.Event, len(log))
	for i, ev := range log {
		res[i] = ev.Clone()
	}
	return res, true
}
