package fluid

// integrate advances non-ghost particles by dt and reflects them off the
// box walls. The default scheme is kick-drift-kick: half a velocity step
// from the current acceleration, a full position step with the half-step
// velocity, then the second half velocity step from the same (still
// valid) force field.
func (s *Simulation) integrate(dt float32) {
	positions := s.state.Positions
	velocities := s.state.Velocities
	densities := s.state.Densities
	forces := s.state.Forces

	s.pool.forEach(len(positions), func(sp span) {
		for gid := sp.start; gid < sp.end; gid++ {
			if gid < s.params.GhostCount {
				continue
			}

			pos := positions[gid]
			vel := velocities[gid]

			switch s.params.Integrator {
			case IntegratorEuler:
				pos = pos.Add(vel.Scale(dt))
				vel = vel.Add(s.params.Gravity.Scale(dt))
			default:
				accel := s.params.Gravity.Add(forces[gid].Scale(1 / (densities[gid] + densityEpsilon)))
				vel = vel.Add(accel.Scale(dt / 2))
				pos = pos.Add(vel.Scale(dt))
				vel = vel.Add(accel.Scale(dt / 2))
			}

			// Axes reflect independently; a corner hit clamps more than one.
			pos.X, vel.X = s.reflectAxis(pos.X, vel.X, s.params.Box.X)
			pos.Y, vel.Y = s.reflectAxis(pos.Y, vel.Y, s.params.Box.Y)
			pos.Z, vel.Z = s.reflectAxis(pos.Z, vel.Z, s.params.Box.Z)

			positions[gid] = pos
			velocities[gid] = vel
		}
	})
}

// reflectAxis clamps one coordinate to the box walls, keeping a margin of
// one smoothing radius, and scales the axis velocity by the damping
// factor (typically negative, inverting direction while losing energy).
func (s *Simulation) reflectAxis(p, v, extent float32) (float32, float32) {
	h := s.params.SmoothingRadius

	if p-h < 0 {
		return h, v * s.params.Damping
	}
	if p+h > extent {
		return extent - h, v * s.params.Damping
	}
	return p, v
}
