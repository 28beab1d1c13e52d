package player

import (
	"time"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
)

// Spawn dispatches an entity.spawn-request addressed to the entity
func Spawn(k *bedrock.Kernel, req contract.SpawnRequest) []*bedrock.Event {
	return dispatch(k, contract.CommandSpawnRequest, req, spawnEntityID(req))
}

// Despawn dispatches an entity.despawn-request addressed to the entity
func Despawn(k *bedrock.Kernel, req contract.DespawnRequest) []*bedrock.Event {
	return dispatch(k, contract.CommandDespawnRequest, req, req.EntityID)
}

// Control dispatches an input.control addressed to the acting entity
func Control(k *bedrock.Kernel, in contract.ControlInput) []*bedrock.Event {
	return dispatch(k, contract.CommandControlInput, in, in.ActorID)
}

// Tick dispatches a world.tick at the given time
func Tick(k *bedrock.Kernel, now time.Time) []*bedrock.Event {
	cmd, err := bedrock.NewCommand(contract.CommandTick,
		contract.Tick{Now: now},
		&bedrock.CommandMeta{
			IssuedAt:    now,
			AggregateID: contract.WorldAggregate,
		},
	)
	if err != nil {
		return []*bedrock.Event{}
	}
	return k.Dispatch(cmd)
}

func dispatch(
	k *bedrock.Kernel, typ bedrock.CommandType, payload any, entityID string,
) []*bedrock.Event {
	meta := &bedrock.CommandMeta{ActorID: entityID}
	if entityID != "" {
		meta.AggregateID = contract.EntityAggregate(entityID)
	}
	cmd, err := bedrock.NewCommand(typ, payload, meta)
	if err != nil {
		return []*bedrock.Event{}
	}
	return k.Dispatch(cmd)
}
