// Package room hosts live sessions. Each Room owns one Kernel with the
// world, player, and gold modules registered, translates client messages
// into commands, and keeps a replicated State for clients to render
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
	"github.com/kode4food/bedrock/gold"
	"github.com/kode4food/bedrock/journal"
	"github.com/kode4food/bedrock/player"
	"github.com/kode4food/bedrock/terrain"
	"github.com/kode4food/bedrock/world"
)

type (
	// Config carries what every Room needs to assemble its session
	Config struct {
		Terrain    *terrain.Registry
		Plan       world.PlanProvider
		Player     player.Config
		Logger     *zap.Logger
		Clock      func() time.Time
		Store      *journal.Store
		Recorder   journal.RecorderConfig
		Hibernator journal.Hibernator
	}

	// Message is a client request
	Message struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	// Room is one live session. Its methods are serialized, giving the
	// Kernel the single logical thread it requires
	Room struct {
		id       string
		config   Config
		logger   *zap.Logger
		mu       sync.Mutex
		kernel   *bedrock.Kernel
		state    *State
		players  *player.Controller
		gold     *gold.Mod
		recorder *journal.Recorder
		clients  map[string]bool
		closed   bool
	}
)

// Client message types
const (
	MessageRegenerate = "regenerate"
	MessageMove       = "player:move"
	MessageJump       = "player:jump"
	MessageMineGold   = "gold:mine"
	MessageSmeltGold  = "gold:smelt"
)

const leaveReason = "left"

var (
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrInvalidDirection = errors.New("direction must be -1 or 1")
	ErrNotJoined        = errors.New("client has not joined")
	ErrAlreadyJoined    = errors.New("client already joined")
	ErrRoomClosed       = errors.New("room is closed")
	ErrGenerateFailed   = errors.New("world generation failed")
	ErrTerrainRequired  = errors.New("terrain registry is required")
)

// Open assembles a fresh Kernel for the session and generates its world
func Open(id string, cfg Config) (*Room, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	svc, err := world.NewService(cfg.Terrain, cfg.Plan)
	if err != nil {
		return nil, err
	}
	players, err := player.NewManager(cfg.Player)
	if err != nil {
		return nil, err
	}

	r := &Room{
		id:      id,
		config:  cfg,
		logger:  cfg.Logger.With(zap.String("session", id)),
		state:   NewState(),
		players: player.NewController(players, cfg.Clock),
		gold:    gold.NewMod(),
		clients: map[string]bool{},
	}
	r.kernel = bedrock.NewKernel(bedrock.Config{
		Logger:  r.logger,
		Clock:   cfg.Clock,
		OnFault: r.onFault,
	})

	svc.Register(r.kernel)
	r.players.Register(r.kernel)
	r.gold.Register(r.kernel)
	r.kernel.Subscribe(bedrock.Wildcard, r.state.Apply)

	if cfg.Store != nil {
		r.recorder = journal.NewRecorder(cfg.Store, id, cfg.Recorder, r.logger)
		r.kernel.Subscribe(bedrock.Wildcard, r.recorder.Listener())
	}

	if len(r.generate()) == 0 {
		r.stopRecorder()
		return nil, fmt.Errorf("%w: %s", ErrGenerateFailed, id)
	}
	r.logger.Info("room opened")
	return r, nil
}

func (r *Room) ID() string {
	return r.id
}

// Join spawns a player entity for the client
func (r *Room) Join(client string) ([]*bedrock.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}
	if r.clients[client] {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyJoined, client)
	}
	evs := player.Spawn(r.kernel, contract.SpawnRequest{
		Kind:     player.KindPlayer,
		OwnerID:  client,
		EntityID: client,
	})
	if len(evs) > 0 {
		r.clients[client] = true
		r.logger.Info("client joined", zap.String("client", client))
	}
	return evs, nil
}

// Leave despawns the client's player entity
func (r *Room) Leave(client string) ([]*bedrock.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}
	if !r.clients[client] {
		return nil, fmt.Errorf("%w: %s", ErrNotJoined, client)
	}
	delete(r.clients, client)
	r.logger.Info("client left", zap.String("client", client))
	return player.Despawn(r.kernel, contract.DespawnRequest{
		EntityID: client,
		Reason:   leaveReason,
	}), nil
}

// Handle translates a client message into a command and dispatches it
func (r *Room) Handle(client string, msg Message) ([]*bedrock.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}

	switch msg.Type {
	case MessageRegenerate:
		return r.generate(), nil
	case MessageMove, MessageJump, MessageMineGold, MessageSmeltGold:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Type)
	}

	if !r.clients[client] {
		return nil, fmt.Errorf("%w: %s", ErrNotJoined, client)
	}

	switch msg.Type {
	case MessageMove:
		data, err := bedrock.DecodePayload[contract.MoveData](msg.Payload)
		if err != nil {
			return nil, err
		}
		if data.Direction != -1 && data.Direction != 1 {
			return nil, ErrInvalidDirection
		}
		return r.control(client, contract.ControlMove, msg.Payload), nil
	case MessageJump:
		return r.control(client, contract.ControlJump, nil), nil
	case MessageMineGold:
		return gold.Mine(r.kernel, client), nil
	default:
		return gold.Smelt(r.kernel, client), nil
	}
}

// Tick lands any players whose jump has finished by now
func (r *Room) Tick(now time.Time) []*bedrock.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return []*bedrock.Event{}
	}
	return player.Tick(r.kernel, now)
}

// State returns a copy of the replicated state
func (r *Room) State() *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Copy()
}

// Log returns a copy of the session's event log
func (r *Room) Log() []*bedrock.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kernel.GetLog()
}

// Clients lists the clients currently joined, in order
func (r *Room) Clients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.clients))
}

// Close ends the session. The recorder is drained, the log is handed to the
// Hibernator if one is configured, and the journal streams are purged once
// the log is safely hibernated. The final log is returned
func (r *Room) Close(ctx context.Context) ([]*bedrock.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}
	r.closed = true
	r.stopRecorder()

	log := r.kernel.GetLog()
	if err := r.hibernate(ctx, log); err != nil {
		r.logger.Error("failed to hibernate room", zap.Error(err))
		return log, err
	}
	r.logger.Info("room closed", zap.Int("events", len(log)))
	return log, nil
}

func (r *Room) hibernate(ctx context.Context, log []*bedrock.Event) error {
	h := r.config.Hibernator
	if h == nil {
		return nil
	}
	err := h.Put(ctx, &journal.HibernateRecord{
		SessionID: r.id,
		Events:    log,
		ClosedAt:  r.config.Clock(),
	})
	if err != nil {
		return err
	}
	if r.config.Store != nil {
		return r.config.Store.Purge(ctx, r.id)
	}
	return nil
}

func (r *Room) generate() []*bedrock.Event {
	return r.kernel.Dispatch(bedrock.Command{
		Type: contract.CommandGenerateWorld,
		Meta: &bedrock.CommandMeta{
			AggregateID: contract.WorldAggregate,
		},
	})
}

func (r *Room) control(
	client, kind string, data json.RawMessage,
) []*bedrock.Event {
	return player.Control(r.kernel, contract.ControlInput{
		ActorID:      client,
		ControllerID: client,
		Kind:         kind,
		Data:         data,
	})
}

func (r *Room) onFault(f bedrock.Fault) {
	module, _, _ := strings.Cut(string(f.Command.Type), ".")
	r.state.recordError(contract.ModuleErrored{
		Module:      module,
		CommandType: string(f.Command.Type),
		Message:     f.Err.Error(),
	})
}

func (r *Room) stopRecorder() {
	if r.recorder != nil {
		r.recorder.Stop()
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.Terrain == nil {
		return c, ErrTerrainRequired
	}
	if c.Plan == nil {
		c.Plan = world.DefaultPlanProvider(c.Terrain)
	}
	if c.Player.WorldWidth == 0 {
		c.Player.WorldWidth = world.Width
		c.Player.SurfaceY = world.PlayerSurfaceRow
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c, nil
}
