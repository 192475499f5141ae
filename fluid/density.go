package fluid

// evalDensities computes the smoothing-kernel-weighted density of every
// particle from the current positions. Ghost particles are included: a
// static boundary particle without a density would poison its neighbors'
// force denominators.
//
// The particle's own self-contribution is part of the sum (r = 0 gives
// the kernel's peak value), so an isolated particle still carries
// mass * poly6(0).
func (s *Simulation) evalDensities() {
	positions := s.state.Positions
	densities := s.state.Densities

	s.pool.forEach(len(positions), func(sp span) {
		for gid := sp.start; gid < sp.end; gid++ {
			pos := positions[gid]

			var rho float32
			s.visitNeighborhood(pos, func(j int) {
				r2 := positions[j].Sub(pos).LengthSq()
				if r2 < s.kern.h2 {
					rho += s.params.Mass * s.kern.Poly6(r2)
				}
			})

			densities[gid] = rho
		}
	})
}
