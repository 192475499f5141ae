package fluid

// pressure evaluates the equation of state at a given density. The plain
// ideal-gas law goes negative below rest density, which lets sparse
// regions attract; the clamp makes the fluid purely repulsive.
func (s *Simulation) pressure(rho float32) float32 {
	p := s.params.GasConstant * (rho - s.params.RestDensity)
	if s.params.ClampNegativePressure && p < 0 {
		return 0
	}
	return p
}

// evalForces accumulates the pressure-gradient and viscosity force on
// every non-ghost particle from its neighborhood. Unlike the density
// pass, a particle is not its own neighbor here.
//
// The pressure term is symmetrized by the pairwise pressure average, so
// forces stay consistent with Newton's third law up to each side's own
// density denominator. Coincident particles fall back to a fixed unit-x
// separation direction rather than normalizing a zero vector.
func (s *Simulation) evalForces() {
	positions := s.state.Positions
	velocities := s.state.Velocities
	densities := s.state.Densities
	forces := s.state.Forces
	mass := s.params.Mass
	visc := s.params.Viscosity

	s.pool.forEach(len(positions), func(sp span) {
		for gid := sp.start; gid < sp.end; gid++ {
			if gid < s.params.GhostCount {
				forces[gid] = Vec3{}
				continue
			}

			pos := positions[gid]
			vel := velocities[gid]
			pi := s.pressure(densities[gid])

			var force Vec3
			s.visitNeighborhood(pos, func(j int) {
				if j == gid {
					return
				}

				delta := positions[j].Sub(pos)
				r2 := delta.LengthSq()
				if r2 >= s.kern.h2 {
					return
				}

				r := delta.Length()
				dir := Vec3{X: 1}
				if r > 0 {
					dir = delta.Scale(1 / r)
				}

				rhoJ := densities[j] + densityEpsilon
				pj := s.pressure(densities[j])

				// SpikyGrad is negative inside the support radius, so a
				// positive pairwise pressure pushes gid away from j.
				force = force.Add(dir.Scale(mass * (pi + pj) / (2 * rhoJ) * s.kern.SpikyGrad(r)))
				force = force.Add(velocities[j].Sub(vel).Scale(visc * mass * s.kern.ViscLap(r) / rhoJ))
			})

			forces[gid] = force
		}
	})
}
