package terrain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/bedrock/terrain"
)

func TestRegisterBase(t *testing.T) {
	reg := terrain.NewRegistry()
	require.NoError(t, terrain.RegisterBase(reg))

	assert.Equal(t, []terrain.ID{
		terrain.Air, terrain.Grass, terrain.Dirt, terrain.Stone, terrain.Gold,
	}, reg.IDs())

	gold, ok := reg.Get(terrain.Gold)
	assert.True(t, ok)
	assert.Equal(t, "Gold", gold.Name)
	assert.Equal(t, uint32(0xd4af37), gold.Color)

	all := reg.All()
	require.Len(t, all, 5)
	assert.Equal(t, terrain.Air, all[0].ID)
}

func TestRegisterDuplicate(t *testing.T) {
	reg := terrain.NewRegistry()
	require.NoError(t, terrain.RegisterBase(reg))

	err := reg.Register(terrain.Definition{ID: terrain.Stone, Name: "Rock"})
	assert.ErrorIs(t, err, terrain.ErrAlreadyRegistered)

	def, err := reg.Require(terrain.Stone)
	require.NoError(t, err)
	assert.Equal(t, "Stone", def.Name)

	assert.ErrorIs(t, terrain.RegisterBase(reg), terrain.ErrAlreadyRegistered)
}

func TestRequire(t *testing.T) {
	reg := terrain.NewRegistry()

	_, err := reg.Require("terrain.lava")
	assert.ErrorIs(t, err, terrain.ErrNotRegistered)
	assert.Contains(t, err.Error(), "terrain.lava")

	_, ok := reg.Get("terrain.lava")
	assert.False(t, ok)

	assert.ErrorIs(t,
		reg.Register(terrain.Definition{Name: "Nameless"}),
		terrain.ErrIDRequired,
	)
	assert.Empty(t, reg.All())
}

func TestIDsIsCopy(t *testing.T) {
	reg := terrain.NewRegistry()
	require.NoError(t, terrain.RegisterBase(reg))

	ids := reg.IDs()
	ids[0] = "terrain.lava"
	assert.Equal(t, terrain.Air, reg.IDs()[0])
}
