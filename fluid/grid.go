package fluid

// grid maps particle positions onto a uniform axis-aligned cell grid with
// spacing equal to the smoothing radius, so the 3x3x3 neighborhood of a
// particle's cell covers its full interaction range.
type grid struct {
	h          float32
	nx, ny, nz int32
}

func newGrid(h float32, nx, ny, nz int32) grid {
	return grid{h: h, nx: nx, ny: ny, nz: nz}
}

// cellCount returns the total number of cells.
func (g grid) cellCount() int {
	return int(g.nx) * int(g.ny) * int(g.nz)
}

// cellCoord returns the integer cell coordinate of a position, clamped to
// the grid extent. Positions outside the configured box alias to border
// cells; keeping them in range is all the defense the solver provides
// (out-of-box positions are a caller contract violation).
func (g grid) cellCoord(p Vec3) (int32, int32, int32) {
	return clampCell(int32(p.X/g.h), g.nx),
		clampCell(int32(p.Y/g.h), g.ny),
		clampCell(int32(p.Z/g.h), g.nz)
}

// cellKey linearizes a cell coordinate row-major.
func (g grid) cellKey(cx, cy, cz int32) uint32 {
	return uint32((cz*g.ny+cy)*g.nx + cx)
}

// inBounds reports whether a cell coordinate is inside the grid. Neighbor
// enumeration uses this to skip cells past the border rather than wrap.
func (g grid) inBounds(cx, cy, cz int32) bool {
	return cx >= 0 && cx < g.nx &&
		cy >= 0 && cy < g.ny &&
		cz >= 0 && cz < g.nz
}

func clampCell(c, n int32) int32 {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
