package chunk

import "github.com/go-theft-craft/voxel/pkg/world/block"

// Accessor resolves cells by world block coordinates across chunk
// boundaries. Missing chunks read as air with MinLight.
type Accessor interface {
	BlockAt(x, y, z int) block.ID
	LightAt(x, y, z int) uint8

	// PutLight stores a light value without touching dirty flags and
	// reports whether the target chunk exists.
	PutLight(x, y, z int, v uint8) bool
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Split maps a world block coordinate to its chunk and local offset. ok is
// false when y is outside the world height.
func Split(x, y, z int) (p Pos, lx, ly, lz int, ok bool) {
	if y < 0 || y >= SizeY {
		return Pos{}, 0, 0, 0, false
	}
	p = Pos{X: FloorDiv(x, SizeX), Z: FloorDiv(z, SizeZ)}
	return p, x - p.X*SizeX, y, z - p.Z*SizeZ, true
}
