// Package terrain keeps the table of block materials a world can be built
// from
package terrain

import (
	"errors"
	"fmt"
	"slices"
)

type (
	// ID identifies a terrain type, e.g. "terrain.stone"
	ID string

	// Definition describes how a terrain type is presented to clients
	Definition struct {
		ID          ID     `json:"id"`
		Name        string `json:"name"`
		TexturePath string `json:"texturePath"`
		Color       uint32 `json:"color"`
	}

	// Registry stores terrain definitions in registration order. It is not
	// safe for concurrent registration; populate it before sharing
	Registry struct {
		defs  map[ID]Definition
		order []ID
	}
)

var (
	// ErrAlreadyRegistered is returned when a terrain ID is registered twice
	ErrAlreadyRegistered = errors.New("terrain already registered")

	// ErrNotRegistered is returned by Require for unknown terrain IDs
	ErrNotRegistered = errors.New("terrain not registered")

	// ErrIDRequired is returned when registering a definition with no ID
	ErrIDRequired = errors.New("terrain id is required")
)

func NewRegistry() *Registry {
	return &Registry{defs: map[ID]Definition{}}
}

// Register adds a definition. Registering an ID that already exists fails
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return ErrIDRequired
	}
	if _, ok := r.defs[def.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, def.ID)
	}
	r.defs[def.ID] = def
	r.order = append(r.order, def.ID)
	return nil
}

// Get returns the definition for an ID, if registered
func (r *Registry) Get(id ID) (Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// Require returns the definition for an ID or ErrNotRegistered
func (r *Registry) Require(id ID) (Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	return def, nil
}

// All returns every definition in registration order
func (r *Registry) All() []Definition {
	res := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, r.defs[id])
	}
	return res
}

// IDs returns the registered IDs in registration order
func (r *Registry) IDs() []ID {
	return slices.Clone(r.order)
}
