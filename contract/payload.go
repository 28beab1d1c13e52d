package contract

import (
	"encoding/json"
	"time"
)

type (
	Position struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	RawInput struct {
		ActorID string          `json:"actorId"`
		Kind    string          `json:"kind"`
		Data    json.RawMessage `json:"data,omitempty"`
	}

	ControlInput struct {
		ActorID      string          `json:"actorId"`
		ControllerID string          `json:"controllerId"`
		Kind         string          `json:"kind"`
		Data         json.RawMessage `json:"data,omitempty"`
	}

	// MoveData is the Data of a "move" ControlInput
	MoveData struct {
		Direction int `json:"direction"`
	}

	GenerateWorld struct {
		Seed *int64 `json:"seed,omitempty"`
	}

	SpawnRequest struct {
		At       *Position `json:"at,omitempty"`
		Kind     string    `json:"kind"`
		OwnerID  string    `json:"ownerId,omitempty"`
		EntityID string    `json:"entityId,omitempty"`
	}

	DespawnRequest struct {
		EntityID string `json:"entityId"`
		Reason   string `json:"reason"`
	}

	// Tick advances session time; a zero Now defers to the command's
	// IssuedAt or the receiver's clock
	Tick struct {
		Now time.Time `json:"now,omitzero"`
	}

	MineGold struct {
		Player string `json:"player"`
	}

	SmeltGold struct {
		Player string `json:"player"`
	}

	BlockSet struct {
		Position Position `json:"position"`
		Material string   `json:"material"`
	}

	BlockChanged struct {
		Position Position `json:"position"`
		From     string   `json:"from"`
		To       string   `json:"to"`
	}

	// WorldGenerated carries the full grid and palette of a generated world
	WorldGenerated struct {
		Width   int            `json:"width"`
		Height  int            `json:"height"`
		Cells   [][]string     `json:"cells"`
		Palette []PaletteEntry `json:"palette"`
	}

	PaletteEntry struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		TexturePath string `json:"texturePath"`
		Color       uint32 `json:"color"`
	}

	EntitySpawned struct {
		EntityID string   `json:"entityId"`
		Kind     string   `json:"kind"`
		Position Position `json:"position"`
		OwnerID  string   `json:"ownerId,omitempty"`
	}

	EntityMoved struct {
		EntityID string   `json:"entityId"`
		From     Position `json:"from"`
		To       Position `json:"to"`
		Cause    string   `json:"cause"`
	}

	EntityDespawned struct {
		EntityID string `json:"entityId"`
		Reason   string `json:"reason"`
	}

	ToolUsedOnBlock struct {
		ToolID     string   `json:"toolId"`
		ByEntityID string   `json:"byEntityId"`
		Position   Position `json:"position"`
		ToolKind   string   `json:"toolKind"`
	}

	AbilityUsed struct {
		EntityID string          `json:"entityId"`
		Ability  string          `json:"ability"`
		Args     json.RawMessage `json:"args,omitempty"`
	}

	ItemGranted struct {
		ToEntityID string `json:"toEntityId"`
		Item       string `json:"item"`
		Quantity   int    `json:"quantity"`
	}

	ItemConsumed struct {
		FromEntityID string `json:"fromEntityId"`
		Item         string `json:"item"`
		Quantity     int    `json:"quantity"`
	}

	DamageProposed struct {
		TargetID string `json:"targetId"`
		SourceID string `json:"sourceId"`
		Amount   int    `json:"amount"`
		Kind     string `json:"kind"`
	}

	DamageApplied struct {
		TargetID string `json:"targetId"`
		Amount   int    `json:"amount"`
		HPAfter  int    `json:"hpAfter"`
	}

	ModuleErrored struct {
		Module      string `json:"module"`
		CommandType string `json:"commandType"`
		Message     string `json:"message"`
	}
)
