package world_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/bedrock"
	"github.com/kode4food/bedrock/contract"
	"github.com/kode4food/bedrock/terrain"
	"github.com/kode4food/bedrock/world"
)

func newRegistry(t *testing.T) *terrain.Registry {
	t.Helper()
	reg := terrain.NewRegistry()
	require.NoError(t, terrain.RegisterBase(reg))
	return reg
}

func TestDefaultPlan(t *testing.T) {
	plan, err := world.DefaultPlan(newRegistry(t))
	require.NoError(t, err)
	require.Len(t, plan, world.Height)

	gold := map[[2]int]bool{{2, 6}: true, {4, 7}: true, {6, 7}: true, {8, 8}: true}
	for y, row := range plan {
		require.Len(t, row, world.Width)
		for x, id := range row {
			switch {
			case gold[[2]int{x, y}]:
				assert.Equal(t, terrain.Gold, id, "x=%d y=%d", x, y)
			case y < world.AirLayers:
				assert.Equal(t, terrain.Air, id, "x=%d y=%d", x, y)
			case y == world.GrassLayer:
				assert.Equal(t, terrain.Grass, id, "x=%d y=%d", x, y)
			case y < 9:
				assert.Equal(t, terrain.Dirt, id, "x=%d y=%d", x, y)
			default:
				assert.Equal(t, terrain.Stone, id, "x=%d y=%d", x, y)
			}
		}
	}
	assert.Equal(t, 3, world.PlayerSurfaceRow)
}

func TestDefaultPlanRequiresTerrain(t *testing.T) {
	reg := terrain.NewRegistry()
	require.NoError(t, reg.Register(terrain.Definition{ID: terrain.Air}))

	_, err := world.DefaultPlan(reg)
	assert.ErrorIs(t, err, terrain.ErrNotRegistered)
}

func TestGenerateSnapshot(t *testing.T) {
	reg := newRegistry(t)
	svc, err := world.NewService(reg, world.DefaultPlanProvider(reg))
	require.NoError(t, err)

	snap, err := svc.GenerateSnapshot()
	require.NoError(t, err)
	assert.Equal(t, world.Width, snap.Width)
	assert.Equal(t, world.Height, snap.Height)
	assert.Len(t, snap.Palette, 5)

	payload := snap.Payload()
	assert.Equal(t, "terrain.air", payload.Cells[0][0])
	assert.Equal(t, "terrain.gold", payload.Cells[6][2])
	assert.Equal(t, "Grass", payload.Palette[1].Name)
}

func TestGenerateSnapshotValidation(t *testing.T) {
	reg := newRegistry(t)

	short := func() (world.Plan, error) {
		return make(world.Plan, 3), nil
	}
	svc, err := world.NewService(reg, short)
	require.NoError(t, err)
	_, err = svc.GenerateSnapshot()
	assert.ErrorIs(t, err, world.ErrPlanHeight)
	assert.Contains(t, err.Error(), "expected 10, received 3")

	narrow := func() (world.Plan, error) {
		plan, err := world.DefaultPlan(reg)
		if err != nil {
			return nil, err
		}
		plan[5] = plan[5][:4]
		return plan, nil
	}
	svc, err = world.NewService(reg, narrow)
	require.NoError(t, err)
	_, err = svc.GenerateSnapshot()
	assert.ErrorIs(t, err, world.ErrPlanWidth)
	assert.Contains(t, err.Error(), "row 5")

	_, err = world.NewService(reg, nil)
	assert.ErrorIs(t, err, world.ErrPlanProviderRequired)
}

func TestGenerateWorldCommand(t *testing.T) {
	reg := newRegistry(t)
	svc, err := world.NewService(reg, world.DefaultPlanProvider(reg))
	require.NoError(t, err)

	k := bedrock.NewKernel(bedrock.DefaultConfig())
	svc.Register(k)

	evs := k.Dispatch(bedrock.Command{Type: contract.CommandGenerateWorld})
	require.Len(t, evs, world.Width*world.Height+1)

	first := evs[0]
	assert.Equal(t, contract.EventBlockSet, first.Type)
	assert.Equal(t, "block:0,0", first.Meta.AggregateID)
	assert.Equal(t, int64(1), first.Meta.Sequence)
	assert.Equal(t, contract.CommandGenerateWorld, first.Meta.Cause.CommandType)

	block, err := bedrock.DecodePayload[contract.BlockSet](evs[62].Payload)
	require.NoError(t, err)
	assert.Equal(t, contract.Position{X: 2, Y: 6}, block.Position)
	assert.Equal(t, "terrain.gold", block.Material)

	last := evs[len(evs)-1]
	assert.Equal(t, contract.EventWorldGenerated, last.Type)
	assert.Equal(t, contract.WorldAggregate, last.Meta.AggregateID)
	gen, err := bedrock.DecodePayload[contract.WorldGenerated](last.Payload)
	require.NoError(t, err)
	assert.Equal(t, 10, gen.Width)
	assert.Len(t, gen.Cells, 10)
	assert.Len(t, gen.Palette, 5)

	again := k.Dispatch(bedrock.Command{Type: contract.CommandGenerateWorld})
	require.Len(t, again, len(evs))
	assert.Equal(t, int64(2), again[0].Meta.Sequence)
	assert.Equal(t, int64(2), again[len(again)-1].Meta.Sequence)
}

func TestGenerateWorldFailure(t *testing.T) {
	reg := newRegistry(t)
	failing := func() (world.Plan, error) {
		return nil, errors.New("no plan")
	}
	svc, err := world.NewService(reg, failing)
	require.NoError(t, err)

	k := bedrock.NewKernel(bedrock.DefaultConfig())
	svc.Register(k)

	assert.Empty(t, k.Dispatch(bedrock.Command{
		Type: contract.CommandGenerateWorld,
	}))
	assert.Zero(t, k.Len())
	assert.Equal(t, int64(1), k.Faults())
}
