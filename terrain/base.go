package terrain

const (
	Air   ID = "terrain.air"
	Grass ID = "terrain.grass"
	Dirt  ID = "terrain.dirt"
	Stone ID = "terrain.stone"
	Gold  ID = "terrain.gold"
)

var base = []Definition{
	{
		ID:          Air,
		Name:        "Air",
		TexturePath: "mods/terrain/air/textures/air.png",
		Color:       0x87ceeb,
	},
	{
		ID:          Grass,
		Name:        "Grass",
		TexturePath: "mods/terrain/grass/textures/grass.png",
		Color:       0x3a9d23,
	},
	{
		ID:          Dirt,
		Name:        "Dirt",
		TexturePath: "mods/terrain/dirt/textures/dirt.png",
		Color:       0x6b4f2a,
	},
	{
		ID:          Stone,
		Name:        "Stone",
		TexturePath: "mods/terrain/stone/textures/stone.png",
		Color:       0x505050,
	},
	{
		ID:          Gold,
		Name:        "Gold",
		TexturePath: "mods/terrain/gold/textures/gold.png",
		Color:       0xd4af37,
	},
}

// RegisterBase registers air, grass, dirt, stone, and gold, in that order
func RegisterBase(r *Registry) error {
	for _, def := range base {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}
