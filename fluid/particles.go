package fluid

import (
	"math"
	"math/rand"
)

// State holds the per-particle arrays advanced by the solver, indexed
// 0..N-1. Positions and velocities persist across steps; densities and
// forces are overwritten every step before the integrator consumes them.
// The display side reads Positions and Densities after a step completes.
type State struct {
	Positions  []Vec3
	Velocities []Vec3
	Densities  []float32
	Forces     []Vec3
}

func NewState(n int) *State {
	return &State{
		Positions:  make([]Vec3, n),
		Velocities: make([]Vec3, n),
		Densities:  make([]float32, n),
		Forces:     make([]Vec3, n),
	}
}

func (s *State) Len() int {
	return len(s.Positions)
}

// SeedBlock fills dst with a jittered lattice of len(dst) particles
// inside a box of the given size anchored at origin (the dam-break
// column). Lattice dimensions are derived from the particle count so the
// block is filled uniformly regardless of its aspect ratio; jitter keeps
// the initial configuration off exact kernel-support boundaries.
func SeedBlock(dst []Vec3, rng *rand.Rand, origin, size Vec3) {
	n := len(dst)
	if n == 0 {
		return
	}

	// Points per unit length for a uniform fill.
	k := math.Cbrt(float64(n) / float64(size.X*size.Y*size.Z))

	nx := int(math.Ceil(float64(size.X) * k))
	ny := int(math.Ceil(float64(size.Y) * k))
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	nz := (n + nx*ny - 1) / (nx * ny)

	dx := size.X / float32(nx)
	dy := size.Y / float32(ny)
	dz := size.Z / float32(nz)

	for i := range dst {
		ix := i % nx
		iy := (i / nx) % ny
		iz := i / (nx * ny)

		dst[i] = Vec3{
			X: origin.X + (float32(ix)+0.5)*dx + (rng.Float32()-0.5)*0.4*dx,
			Y: origin.Y + (float32(iy)+0.5)*dy + (rng.Float32()-0.5)*0.4*dy,
			Z: origin.Z + (float32(iz)+0.5)*dz + (rng.Float32()-0.5)*0.4*dz,
		}
	}
}

// FloorLayerCount returns the particle count of a single static boundary
// layer covering the floor of a box at the given lattice spacing.
func FloorLayerCount(box Vec3, spacing float32) int {
	nx := int(box.X/spacing) + 1
	nz := int(box.Z/spacing) + 1
	return nx * nz
}

// SeedFloorLayer fills dst with a regular lattice at the given height
// above the floor. These are ghost particles: the solver counts them as
// neighbors but never moves them.
func SeedFloorLayer(dst []Vec3, box Vec3, spacing, height float32) {
	nx := int(box.X/spacing) + 1

	for i := range dst {
		ix := i % nx
		iz := i / nx

		dst[i] = Vec3{
			X: float32(ix) * spacing,
			Y: height,
			Z: float32(iz) * spacing,
		}
	}
}
