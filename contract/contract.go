// Package contract holds the command and event vocabulary shared by the
// feature modules and the room adapter, along with their payload shapes
package contract

import (
	"fmt"

	"github.com/kode4food/bedrock"
)

const (
	CommandRawInput       bedrock.CommandType = "input.raw"
	CommandControlInput   bedrock.CommandType = "input.control"
	CommandGenerateWorld  bedrock.CommandType = "world.generate"
	CommandSpawnRequest   bedrock.CommandType = "entity.spawn-request"
	CommandDespawnRequest bedrock.CommandType = "entity.despawn-request"
	CommandTick           bedrock.CommandType = "world.tick"
	CommandMineGold       bedrock.CommandType = "gold.mine"
	CommandSmeltGold      bedrock.CommandType = "gold.smelt"
)

const (
	EventBlockSet        bedrock.EventType = "world.block-set"
	EventBlockChanged    bedrock.EventType = "world.block-changed"
	EventWorldGenerated  bedrock.EventType = "world.generated"
	EventEntitySpawned   bedrock.EventType = "entity.spawned"
	EventEntityMoved     bedrock.EventType = "entity.moved"
	EventEntityDespawned bedrock.EventType = "entity.despawned"
	EventToolUsedOnBlock bedrock.EventType = "tool.used-on-block"
	EventAbilityUsed     bedrock.EventType = "ability.used"
	EventItemGranted     bedrock.EventType = "inventory.item-granted"
	EventItemConsumed    bedrock.EventType = "inventory.item-consumed"
	EventDamageProposed  bedrock.EventType = "combat.damage-proposed"
	EventDamageApplied   bedrock.EventType = "combat.damage-applied"
	EventModuleErrored   bedrock.EventType = "kernel.module-errored"
)

// Control input kinds understood by the player controller
const (
	ControlMove = "move"
	ControlJump = "jump"
)

// Movement causes carried by EntityMoved
const (
	MoveCauseMove = "move"
	MoveCauseJump = "jump"
	MoveCauseLand = "land"
)

// WorldAggregate is the aggregate for whole-world facts
const WorldAggregate = "world"

// EntityAggregate names the causal stream of a single entity
func EntityAggregate(entityID string) string {
	return "entity:" + entityID
}

// BlockAggregate names the causal stream of a single world cell
func BlockAggregate(x, y int) string {
	return fmt.Sprintf("block:%d,%d", x, y)
}

// InventoryAggregate names the causal stream of an entity's inventory
func InventoryAggregate(entityID string) string {
	return "inventory:" + entityID
}
