package player

import (
	"errors"
	"time"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
)

// Controller translates player commands into entity events
type Controller struct {
	players *Manager
	clock   func() time.Time
}

// KindPlayer is the entity kind used when a spawn request names none
const KindPlayer = "player"

// AbilityJump is the ability reported when a player jumps
const AbilityJump = "jump"

// ErrEntityIDRequired is returned for spawn requests that name no entity
var ErrEntityIDRequired = errors.New("spawn request requires an entity id")

func NewController(m *Manager, clock func() time.Time) *Controller {
	if clock == nil {
		clock = time.Now
	}
	return &Controller{players: m, clock: clock}
}

// Players returns the Manager this Controller drives
func (c *Controller) Players() *Manager {
	return c.players
}

// Register binds the spawn, despawn, control, and tick commands
func (c *Controller) Register(k *bedrock.Kernel) {
	k.Register(contract.CommandSpawnRequest, bedrock.MakeHandler(c.spawn))
	k.Register(contract.CommandDespawnRequest, bedrock.MakeHandler(c.despawn))
	k.Register(contract.CommandControlInput, bedrock.MakeHandler(c.control))
	k.Register(contract.CommandTick, bedrock.MakeHandler(c.tick))
}

func (c *Controller) spawn(
	_ bedrock.Command, req contract.SpawnRequest,
) ([]bedrock.EventDraft, error) {
	id := spawnEntityID(req)
	if id == "" {
		return nil, ErrEntityIDRequired
	}
	st, err := c.players.Spawn(id, req.At)
	if err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = KindPlayer
	}
	d, err := bedrock.NewDraft(contract.EventEntitySpawned,
		contract.EntitySpawned{
			EntityID: id,
			Kind:     kind,
			Position: st.Position(),
			OwnerID:  req.OwnerID,
		},
	)
	if err != nil {
		return nil, err
	}
	return []bedrock.EventDraft{
		d.WithAggregate(contract.EntityAggregate(id)),
	}, nil
}

func (c *Controller) despawn(
	_ bedrock.Command, req contract.DespawnRequest,
) ([]bedrock.EventDraft, error) {
	if !c.players.Remove(req.EntityID) {
		return nil, nil
	}
	d, err := bedrock.NewDraft(contract.EventEntityDespawned,
		contract.EntityDespawned(req),
	)
	if err != nil {
		return nil, err
	}
	return []bedrock.EventDraft{
		d.WithAggregate(contract.EntityAggregate(req.EntityID)),
	}, nil
}

func (c *Controller) control(
	cmd bedrock.Command, in contract.ControlInput,
) ([]bedrock.EventDraft, error) {
	switch in.Kind {
	case contract.ControlMove:
		data, err := bedrock.DecodePayload[contract.MoveData](in.Data)
		if err != nil {
			return nil, nil
		}
		from, to, ok := c.players.Move(in.ActorID, data.Direction)
		if !ok {
			return nil, nil
		}
		return movedDrafts(in.ActorID, from, to, contract.MoveCauseMove)
	case contract.ControlJump:
		from, to, ok := c.players.Jump(in.ActorID, c.commandTime(cmd))
		if !ok {
			return nil, nil
		}
		used, err := bedrock.NewDraft(contract.EventAbilityUsed,
			contract.AbilityUsed{EntityID: in.ActorID, Ability: AbilityJump},
		)
		if err != nil {
			return nil, err
		}
		moved, err := movedDrafts(in.ActorID, from, to, contract.MoveCauseJump)
		if err != nil {
			return nil, err
		}
		agg := contract.EntityAggregate(in.ActorID)
		return append([]bedrock.EventDraft{used.WithAggregate(agg)}, moved...), nil
	default:
		return nil, nil
	}
}

func (c *Controller) tick(
	cmd bedrock.Command, t contract.Tick,
) ([]bedrock.EventDraft, error) {
	now := t.Now
	if now.IsZero() {
		now = c.commandTime(cmd)
	}
	var res []bedrock.EventDraft
	for _, id := range c.players.Due(now) {
		from, to, ok := c.players.Land(id)
		if !ok {
			continue
		}
		ds, err := movedDrafts(id, from, to, contract.MoveCauseLand)
		if err != nil {
			return nil, err
		}
		res = append(res, ds...)
	}
	return res, nil
}

func (c *Controller) commandTime(cmd bedrock.Command) time.Time {
	if cmd.Meta != nil && !cmd.Meta.IssuedAt.IsZero() {
		return cmd.Meta.IssuedAt
	}
	return c.clock()
}

func movedDrafts(
	id string, from, to State, cause string,
) ([]bedrock.EventDraft, error) {
	d, err := bedrock.NewDraft(contract.EventEntityMoved, contract.EntityMoved{
		EntityID: id,
		From:     from.Position(),
		To:       to.Position(),
		Cause:    cause,
	})
	if err != nil {
		return nil, err
	}
	return []bedrock.EventDraft{
		d.WithAggregate(contract.EntityAggregate(id)),
	}, nil
}

func spawnEntityID(req contract.SpawnRequest) string {
	if req.EntityID != "" {
		return req.EntityID
	}
	return req.OwnerID
}
