package telemetry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/leon3428/sploosh/fluid"
)

// WindowStats aggregates solver state at the end of a stats window. One
// record per window goes to the CSV log and, optionally, to slog.
type WindowStats struct {
	Step    int64   `csv:"step"`
	SimTime float64 `csv:"sim_time"`

	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedMax  float64 `csv:"speed_max"`

	// KineticEnergy is summed over the moving (non-ghost) particles.
	KineticEnergy float64 `csv:"kinetic_energy"`
}

// Collect computes window statistics from the solver state. Speed and
// energy metrics skip the first ghostCount particles; density metrics
// cover all of them since ghosts carry densities too.
func Collect(state *fluid.State, mass float32, ghostCount int, step int64, simTime float64) WindowStats {
	densities := make([]float64, state.Len())
	for i, d := range state.Densities {
		densities[i] = float64(d)
	}
	sort.Float64s(densities)

	ws := WindowStats{
		Step:        step,
		SimTime:     simTime,
		DensityMean: stat.Mean(densities, nil),
		DensityStd:  stat.StdDev(densities, nil),
		DensityP10:  stat.Quantile(0.1, stat.Empirical, densities, nil),
		DensityP50:  stat.Quantile(0.5, stat.Empirical, densities, nil),
		DensityP90:  stat.Quantile(0.9, stat.Empirical, densities, nil),
	}

	moving := state.Len() - ghostCount
	if moving <= 0 {
		return ws
	}

	speeds := make([]float64, 0, moving)
	var kinetic float64
	for i := ghostCount; i < state.Len(); i++ {
		v2 := float64(state.Velocities[i].LengthSq())
		speed := math.Sqrt(v2)
		speeds = append(speeds, speed)
		kinetic += 0.5 * float64(mass) * v2

		if speed > ws.SpeedMax {
			ws.SpeedMax = speed
		}
	}

	ws.SpeedMean = stat.Mean(speeds, nil)
	ws.KineticEnergy = kinetic
	return ws
}
