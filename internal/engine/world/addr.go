package world

import "github.com/go-theft-craft/voxel/pkg/world/chunk"

// mod returns a mod n in [0, n).
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// mapToPositive folds the integers onto the naturals: 0,-1,1,-2,2 → 0,1,2,3,4.
func mapToPositive(v int) uint64 {
	if v >= 0 {
		return uint64(v) * 2
	}
	return uint64(-v)*2 - 1
}

// CantorKey maps a chunk coordinate to a unique cache key.
func CantorKey(x, z int) uint64 {
	a, b := mapToPositive(x), mapToPositive(z)
	return (a+b)*(a+b+1)/2 + b
}

// window describes the square of chunk coordinates around the player that
// the active grid represents.
type window struct {
	view   int
	origin chunk.Pos // lowest chunk coordinate in the window
}

func newWindow(view int, center chunk.Pos) window {
	return window{
		view:   view,
		origin: chunk.Pos{X: center.X - view/2, Z: center.Z - view/2},
	}
}

// slotOf returns the grid index a chunk coordinate is stored at. A chunk keeps
// its slot while the window scrolls.
func (w window) slotOf(p chunk.Pos) int {
	return mod(p.X, w.view) + mod(p.Z, w.view)*w.view
}

// want returns the chunk coordinate slot i should hold.
func (w window) want(i int) chunk.Pos {
	sx, sz := i%w.view, i/w.view
	return chunk.Pos{
		X: w.origin.X + mod(sx-w.origin.X, w.view),
		Z: w.origin.Z + mod(sz-w.origin.Z, w.view),
	}
}

// contains reports whether p lies inside the window.
func (w window) contains(p chunk.Pos) bool {
	return p.Y == 0 &&
		p.X >= w.origin.X && p.X < w.origin.X+w.view &&
		p.Z >= w.origin.Z && p.Z < w.origin.Z+w.view
}
