package fluid

import (
	"math"
	"math/rand"
	"testing"
)

func TestIntegrateLeapfrogFreeFall(t *testing.T) {
	// A single particle with no forces accelerates under gravity alone.
	// One kick-drift-kick step: v' = v + g*dt, x' = x + (v + g*dt/2)*dt.
	params := testParams(1)
	sim := NewSimulation(params)
	defer sim.Close()

	sim.State().Positions[0] = Vec3{0.2, 0.3, 0.2}
	sim.State().Velocities[0] = Vec3{0.05, 0, 0}

	dt := float32(0.01)
	sim.integrate(dt)

	pos := sim.State().Positions[0]
	vel := sim.State().Velocities[0]

	wantY := 0.3 + float64(-1*dt/2)*float64(dt)
	if relErr(float64(pos.Y), wantY) > 1e-5 {
		t.Errorf("pos.Y = %g, want %g", pos.Y, wantY)
	}
	if relErr(float64(pos.X), float64(0.2+0.05*dt)) > 1e-5 {
		t.Errorf("pos.X = %g, want %g", pos.X, 0.2+0.05*dt)
	}
	if relErr(float64(vel.Y), float64(-dt)) > 1e-5 {
		t.Errorf("vel.Y = %g, want %g", vel.Y, -dt)
	}
}

func TestIntegrateEulerIgnoresForces(t *testing.T) {
	// The debug integrator moves with the current velocity and applies
	// gravity only; a huge pending force must not leak into the update.
	params := testParams(1)
	params.Integrator = IntegratorEuler
	sim := NewSimulation(params)
	defer sim.Close()

	sim.State().Positions[0] = Vec3{0.2, 0.3, 0.2}
	sim.State().Velocities[0] = Vec3{0.1, 0, 0}
	sim.State().Forces[0] = Vec3{1e6, 1e6, 1e6}
	sim.State().Densities[0] = 1

	dt := float32(0.01)
	sim.integrate(dt)

	pos := sim.State().Positions[0]
	vel := sim.State().Velocities[0]

	if relErr(float64(pos.X), float64(0.2+0.1*dt)) > 1e-5 {
		t.Errorf("pos.X = %g, want %g", pos.X, 0.2+0.1*dt)
	}
	if pos.Y != 0.3 {
		t.Errorf("pos.Y = %g, want unchanged 0.3", pos.Y)
	}
	if relErr(float64(vel.Y), float64(-dt)) > 1e-5 {
		t.Errorf("vel.Y = %g, want %g", vel.Y, -dt)
	}
}

func TestIntegrateCornerReflection(t *testing.T) {
	// A particle escaping through a corner is clamped on every violated
	// axis, each with its own damping application.
	params := testParams(1)
	params.Gravity = Vec3{}
	params.Integrator = IntegratorEuler
	sim := NewSimulation(params)
	defer sim.Close()

	h := params.SmoothingRadius
	sim.State().Positions[0] = Vec3{0.39, 0.39, 0.2}
	sim.State().Velocities[0] = Vec3{2, 2, 0.5}

	sim.integrate(0.01)

	pos := sim.State().Positions[0]
	vel := sim.State().Velocities[0]

	wantWall := params.Box.X - h
	if pos.X != wantWall || pos.Y != wantWall {
		t.Errorf("pos = %v, want x and y clamped to %g", pos, wantWall)
	}
	if relErr(float64(vel.X), float64(2*params.Damping)) > 1e-6 {
		t.Errorf("vel.X = %g, want damped %g", vel.X, 2*params.Damping)
	}
	if relErr(float64(vel.Y), float64(2*params.Damping)) > 1e-6 {
		t.Errorf("vel.Y = %g, want damped %g", vel.Y, 2*params.Damping)
	}
	if vel.Z != 0.5 {
		t.Errorf("vel.Z = %g, want untouched 0.5", vel.Z)
	}
}

func TestIntegrateLowerWallReflection(t *testing.T) {
	params := testParams(1)
	params.Gravity = Vec3{}
	params.Integrator = IntegratorEuler
	sim := NewSimulation(params)
	defer sim.Close()

	h := params.SmoothingRadius
	sim.State().Positions[0] = Vec3{0.2, h + 0.001, 0.2}
	sim.State().Velocities[0] = Vec3{0, -3, 0}

	sim.integrate(0.01)

	pos := sim.State().Positions[0]
	vel := sim.State().Velocities[0]

	if pos.Y != h {
		t.Errorf("pos.Y = %g, want clamped to %g", pos.Y, h)
	}
	if relErr(float64(vel.Y), float64(-3*params.Damping)) > 1e-6 {
		t.Errorf("vel.Y = %g, want damped %g", vel.Y, -3*params.Damping)
	}
}

func TestIntegrateKeepsParticlesInsideBox(t *testing.T) {
	sim := NewSimulation(testParams(600))
	defer sim.Close()

	rng := rand.New(rand.NewSource(7))
	state := sim.State()
	for i := range state.Positions {
		state.Positions[i] = Vec3{rng.Float32() * 0.4, rng.Float32() * 0.4, rng.Float32() * 0.4}
		state.Velocities[i] = Vec3{rng.Float32()*4 - 2, rng.Float32()*4 - 2, rng.Float32()*4 - 2}
	}

	h := sim.params.SmoothingRadius
	for step := 0; step < 50; step++ {
		sim.Step(0.004)

		for i, p := range state.Positions {
			if math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y)) || math.IsNaN(float64(p.Z)) {
				t.Fatalf("step %d: particle %d position is NaN", step, i)
			}
			if p.X < h || p.X > sim.params.Box.X-h ||
				p.Y < h || p.Y > sim.params.Box.Y-h ||
				p.Z < h || p.Z > sim.params.Box.Z-h {
				t.Fatalf("step %d: particle %d escaped the box: %v", step, i, p)
			}
		}
	}
}
