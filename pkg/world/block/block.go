package block

import "github.com/go-gl/mathgl/mgl32"

// ID identifies a block type. Zero is always air.
type ID uint8

// Face is one of the six sides of a block.
type Face uint8

const (
	Top Face = iota
	Bottom
	Front // -Z
	Back  // +Z
	Left  // -X
	Right // +X
)

// Faces lists every face in mesh emission order.
var Faces = [6]Face{Top, Front, Back, Left, Right, Bottom}

var faceNames = [6]string{"top", "bottom", "front", "back", "left", "right"}

func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return "unknown"
}

// Normal returns the unit offset from a block to the neighbor behind face f.
func (f Face) Normal() [3]int {
	switch f {
	case Top:
		return [3]int{0, 1, 0}
	case Bottom:
		return [3]int{0, -1, 0}
	case Front:
		return [3]int{0, 0, -1}
	case Back:
		return [3]int{0, 0, 1}
	case Left:
		return [3]int{-1, 0, 0}
	default:
		return [3]int{1, 0, 0}
	}
}

// Vertical reports whether the face points straight up or down.
func (f Face) Vertical() bool {
	return f == Top || f == Bottom
}

// Atlas layout: a 256px texture of 16×16 tiles.
const (
	AtlasTiles = 16
	TileOffset = float32(1.0 / AtlasTiles)
	// TileWidth is slightly smaller than TileOffset so neighbouring tiles never bleed.
	TileWidth = float32(0.0624)
)

// Block describes the static properties of one block type.
type Block struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Invisible    bool   `json:"invisible,omitempty"`
	Penetrable   bool   `json:"penetrable,omitempty"`
	CastsShadows bool   `json:"casts_shadows,omitempty"`
	Translucent  bool   `json:"translucent,omitempty"`
	Billboard    bool   `json:"billboard,omitempty"`

	// Per-face tint (rgba) and atlas tile (column, row).
	Colors [6]mgl32.Vec4 `json:"-"`
	Tiles  [6][2]int     `json:"-"`
}

// TextureOffset returns the atlas UV origin of face f.
func (b *Block) TextureOffset(f Face) mgl32.Vec2 {
	t := b.Tiles[f]
	return mgl32.Vec2{float32(t[0]) * TileOffset, float32(t[1]) * TileOffset}
}

func white() [6]mgl32.Vec4 {
	var c [6]mgl32.Vec4
	for i := range c {
		c[i] = mgl32.Vec4{1, 1, 1, 1}
	}
	return c
}

func tiles(top, side, bottom [2]int) [6][2]int {
	return [6][2]int{top, bottom, side, side, side, side}
}
