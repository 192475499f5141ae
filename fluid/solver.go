package fluid

import (
	"math"
	"time"
)

// densityEpsilon guards force denominators against near-zero densities in
// sparse regions; without it a lone neighbor pair can produce an unbounded
// force.
const densityEpsilon = 1e-6

// IntegratorKind selects the time integration scheme.
type IntegratorKind int

const (
	// IntegratorLeapfrog is the kick-drift-kick scheme driven by gravity
	// and the pressure/viscosity force field.
	IntegratorLeapfrog IntegratorKind = iota
	// IntegratorEuler is a gravity-only semi-implicit update, useful for
	// coarse debugging without the force pipeline feeding back.
	IntegratorEuler
)

// Params configures a Simulation. Values mirror the config file; the
// solver itself performs no validation beyond deriving the grid shape
// (out-of-range positions are a caller contract violation, see grid).
type Params struct {
	ParticleCount   int
	SmoothingRadius float32
	Mass            float32
	RestDensity     float32
	GasConstant     float32
	Viscosity       float32
	Gravity         Vec3
	Damping         float32
	Box             Vec3

	// GhostCount marks the first GhostCount particles as static boundary
	// mass: counted as neighbors and given a density, but excluded from
	// force evaluation and integration.
	GhostCount int

	// ClampNegativePressure switches the equation of state from the plain
	// ideal-gas law (which permits attraction below rest density) to a
	// purely repulsive one.
	ClampNegativePressure bool

	Integrator IntegratorKind
}

// StageTimer receives per-stage wall-clock durations from Step.
type StageTimer interface {
	Record(stage string, d time.Duration)
}

// Simulation advances a fixed set of particles through discrete steps
// under gravity, pressure and viscosity, bounded by a reflecting box.
//
// Each step rebuilds the spatial lookup from scratch, evaluates densities
// and forces over the sorted neighborhood structure, then integrates.
// Stages run data-parallel over the particle index; the pool's forEach
// return is the synchronization barrier between stages.
type Simulation struct {
	params Params
	grid   grid
	kern   kernels

	pool   *pool
	lookup *spatialLookup
	state  *State

	timer StageTimer
}

func NewSimulation(p Params) *Simulation {
	g := newGrid(p.SmoothingRadius,
		cellsPerAxis(p.Box.X, p.SmoothingRadius),
		cellsPerAxis(p.Box.Y, p.SmoothingRadius),
		cellsPerAxis(p.Box.Z, p.SmoothingRadius))

	pl := newPool()

	return &Simulation{
		params: p,
		grid:   g,
		kern:   newKernels(p.SmoothingRadius),
		pool:   pl,
		lookup: newSpatialLookup(pl, g, p.ParticleCount),
		state:  NewState(p.ParticleCount),
	}
}

// cellsPerAxis mirrors the grid sizing of the original configuration:
// ceil(extent / h) cells per axis.
func cellsPerAxis(extent, h float32) int32 {
	return int32(math.Ceil(float64(extent / h)))
}

func (s *Simulation) State() *State {
	return s.state
}

func (s *Simulation) Params() Params {
	return s.params
}

// SetStageTimer attaches a per-stage timing sink. Pass nil to detach.
func (s *Simulation) SetStageTimer(t StageTimer) {
	s.timer = t
}

// Step advances the simulation by dt. The stage order is fixed:
// lookup rebuild -> density -> forces -> integration; no stage starts
// before the previous one has fully completed.
func (s *Simulation) Step(dt float32) {
	s.stage("lookup", func() { s.lookup.build(s.state.Positions) })
	s.stage("density", s.evalDensities)
	s.stage("forces", s.evalForces)
	s.stage("integrate", func() { s.integrate(dt) })
}

// RebuildLookup rebuilds the spatial structure without advancing the
// simulation. Rebuilding from unchanged positions is idempotent.
func (s *Simulation) RebuildLookup() {
	s.lookup.build(s.state.Positions)
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	s.pool.stop()
}

func (s *Simulation) stage(name string, fn func()) {
	if s.timer == nil {
		fn()
		return
	}
	start := time.Now()
	fn()
	s.timer.Record(name, time.Since(start))
}

// visitNeighborhood calls fn with the index of every particle stored in
// the 27-cell neighborhood of pos. Cells outside the grid are skipped,
// not wrapped; empty cells contribute nothing via run()'s mismatch check.
// Callers still distance-filter: cell membership only bounds the search.
func (s *Simulation) visitNeighborhood(pos Vec3, fn func(j int)) {
	cx, cy, cz := s.grid.cellCoord(pos)

	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				nx, ny, nz := cx+dx, cy+dy, cz+dz
				if !s.grid.inBounds(nx, ny, nz) {
					continue
				}

				start, end := s.lookup.run(s.grid.cellKey(nx, ny, nz))
				for i := start; i < end; i++ {
					fn(int(s.lookup.vals[i]))
				}
			}
		}
	}
}
