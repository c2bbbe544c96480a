package block

import "github.com/go-gl/mathgl/mgl32"

// Block ids of the classic pack.
const (
	Grass ID = iota + 1
	Dirt
	Stone
	Water
	Wood
	Leaves
	Sand
	Hardstone
	RedFlower
	YellowFlower
	HighGrass
	CoalOre
	IronOre
)

// ClassicName is the name the classic pack is registered under.
const ClassicName = "classic"

func init() {
	Register(ClassicName, Classic)
}

// Classic returns the built-in block table.
func Classic() *Table {
	t, err := NewTable(ClassicName, classicBlocks(), Leaves)
	if err != nil {
		panic(err) // static table
	}
	return t
}

func classicBlocks() []Block {
	solid := func(id ID, name string, top, side, bottom [2]int) Block {
		return Block{ID: id, Name: name, CastsShadows: true, Colors: white(), Tiles: tiles(top, side, bottom)}
	}
	plant := func(id ID, name string, tile [2]int) Block {
		return Block{
			ID: id, Name: name,
			Penetrable: true, Translucent: true, Billboard: true,
			Colors: white(), Tiles: tiles(tile, tile, tile),
		}
	}

	grass := solid(Grass, "grass", [2]int{0, 0}, [2]int{3, 0}, [2]int{2, 0})
	grass.Colors[Top] = mgl32.Vec4{0.6, 0.85, 0.4, 1}

	leaves := solid(Leaves, "leaves", [2]int{4, 3}, [2]int{4, 3}, [2]int{4, 3})
	leaves.Translucent = true
	for i := range leaves.Colors {
		leaves.Colors[i] = mgl32.Vec4{0.45, 0.75, 0.35, 1}
	}

	water := Block{
		ID: Water, Name: "water",
		Penetrable: true, Translucent: true,
		Colors: white(), Tiles: tiles([2]int{13, 12}, [2]int{13, 12}, [2]int{13, 12}),
	}
	for i := range water.Colors {
		water.Colors[i] = mgl32.Vec4{0.8, 0.9, 1, 0.8}
	}

	highGrass := plant(HighGrass, "high_grass", [2]int{7, 2})
	for i := range highGrass.Colors {
		highGrass.Colors[i] = mgl32.Vec4{0.6, 0.85, 0.4, 1}
	}

	return []Block{
		{ID: Air, Name: "air", Invisible: true, Penetrable: true, Translucent: true, Colors: white()},
		grass,
		solid(Dirt, "dirt", [2]int{2, 0}, [2]int{2, 0}, [2]int{2, 0}),
		solid(Stone, "stone", [2]int{1, 0}, [2]int{1, 0}, [2]int{1, 0}),
		water,
		solid(Wood, "wood", [2]int{5, 1}, [2]int{4, 1}, [2]int{5, 1}),
		leaves,
		solid(Sand, "sand", [2]int{2, 1}, [2]int{2, 1}, [2]int{2, 1}),
		solid(Hardstone, "hardstone", [2]int{1, 1}, [2]int{1, 1}, [2]int{1, 1}),
		plant(RedFlower, "red_flower", [2]int{12, 0}),
		plant(YellowFlower, "yellow_flower", [2]int{13, 0}),
		highGrass,
		solid(CoalOre, "coal_ore", [2]int{2, 2}, [2]int{2, 2}, [2]int{2, 2}),
		solid(IronOre, "iron_ore", [2]int{1, 2}, [2]int{1, 2}, [2]int{1, 2}),
	}
}
