package world

import (
	"errors"
	"fmt"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
	"github.com/kode4food/bedrock/terrain"
)

type (
	// Snapshot is a fully generated world
	Snapshot struct {
		Width   int
		Height  int
		Cells   Plan
		Palette []terrain.Definition
	}

	// Service generates worlds from a plan and the terrain table
	Service struct {
		terrain *terrain.Registry
		plan    PlanProvider
	}
)

var (
	// ErrPlanHeight is returned when a plan has the wrong number of rows
	ErrPlanHeight = errors.New("terrain plan has wrong number of rows")

	// ErrPlanWidth is returned when a plan row has the wrong length
	ErrPlanWidth = errors.New("terrain plan row has wrong length")

	// ErrPlanProviderRequired is returned by NewService without a provider
	ErrPlanProviderRequired = errors.New("plan provider is required")
)

func NewService(reg *terrain.Registry, plan PlanProvider) (*Service, error) {
	if plan == nil {
		return nil, ErrPlanProviderRequired
	}
	return &Service{terrain: reg, plan: plan}, nil
}

// GenerateSnapshot builds a world from the plan provider, validating its
// dimensions
func (s *Service) GenerateSnapshot() (*Snapshot, error) {
	plan, err := s.plan()
	if err != nil {
		return nil, err
	}
	if len(plan) != Height {
		return nil, fmt.Errorf("%w: expected %d, received %d",
			ErrPlanHeight, Height, len(plan),
		)
	}
	for y, row := range plan {
		if len(row) != Width {
			return nil, fmt.Errorf("%w: row %d expected %d, received %d",
				ErrPlanWidth, y, Width, len(row),
			)
		}
	}
	return &Snapshot{
		Width:   Width,
		Height:  Height,
		Cells:   plan,
		Palette: s.terrain.All(),
	}, nil
}

// Register binds world.generate on the Kernel. The handler emits one
// block-set per cell, row by row, then a world.generated summary
func (s *Service) Register(k *bedrock.Kernel) {
	k.Register(contract.CommandGenerateWorld, bedrock.MakeHandler(
		func(
			_ bedrock.Command, _ contract.GenerateWorld,
		) ([]bedrock.EventDraft, error) {
			snap, err := s.GenerateSnapshot()
			if err != nil {
				return nil, err
			}
			return snapshotDrafts(snap)
		},
	))
}

func snapshotDrafts(snap *Snapshot) ([]bedrock.EventDraft, error) {
	res := make([]bedrock.EventDraft, 0, snap.Width*snap.Height+1)
	for y, row := range snap.Cells {
		for x, material := range row {
			d, err := bedrock.NewDraft(contract.EventBlockSet,
				contract.BlockSet{
					Position: contract.Position{X: x, Y: y},
					Material: string(material),
				},
			)
			if err != nil {
				return nil, err
			}
			res = append(res, d.WithAggregate(contract.BlockAggregate(x, y)))
		}
	}

	d, err := bedrock.NewDraft(contract.EventWorldGenerated, snap.Payload())
	if err != nil {
		return nil, err
	}
	return append(res, d.WithAggregate(contract.WorldAggregate)), nil
}

// Payload converts the snapshot to its wire form
func (s *Snapshot) Payload() contract.WorldGenerated {
	cells := make([][]string, len(s.Cells))
	for y, row := range s.Cells {
		cells[y] = make([]string, len(row))
		for x, id := range row {
			cells[y][x] = string(id)
		}
	}
	palette := make([]contract.PaletteEntry, len(s.Palette))
	for i, def := range s.Palette {
		palette[i] = contract.PaletteEntry{
			ID:          string(def.ID),
			Name:        def.Name,
			TexturePath: def.TexturePath,
			Color:       def.Color,
		}
	}
	return contract.WorldGenerated{
		Width:   s.Width,
		Height:  s.Height,
		Cells:   cells,
		Palette: palette,
	}
}
