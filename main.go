package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/leon3428/sploosh/config"
	"github.com/leon3428/sploosh/fluid"
	"github.com/leon3428/sploosh/telemetry"
	"github.com/leon3428/sploosh/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = unlimited, headless only)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation steps per update call (headless)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	sim := newSimulation(cfg, rng)
	defer sim.Close()

	perf := telemetry.NewPerfStats()
	sim.SetStageTimer(perf)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	slog.Info("simulation configured",
		"seed", rngSeed,
		"particles", sim.Params().ParticleCount,
		"ghosts", sim.Params().GhostCount,
		"cells", cfg.Derived.TotalCells,
		"integrator", cfg.Simulation.Integrator,
	)

	if *headless {
		runHeadless(sim, cfg, perf, output, *logStats, *maxSteps, *stepsPerUpdate)
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "sploosh")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := viewer.New(sim, cfg)
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()
	}
}

// newSimulation builds the solver from the loaded config and seeds the
// dam-break column (plus an optional static boundary floor).
func newSimulation(cfg *config.Config, rng *rand.Rand) *fluid.Simulation {
	sc := cfg.Simulation

	h := float32(sc.SmoothingRadius)
	box := fluid.Vec3{X: float32(sc.Box[0]), Y: float32(sc.Box[1]), Z: float32(sc.Box[2])}

	ghostCount := 0
	if sc.GhostFloor {
		ghostCount = fluid.FloorLayerCount(box, h/2)
	}

	params := fluid.Params{
		ParticleCount:         sc.ParticleCount + ghostCount,
		SmoothingRadius:       h,
		Mass:                  float32(sc.ParticleMass),
		RestDensity:           float32(sc.RestDensity),
		GasConstant:           float32(sc.GasConstant),
		Viscosity:             float32(sc.Viscosity),
		Gravity:               fluid.Vec3{X: float32(sc.Gravity[0]), Y: float32(sc.Gravity[1]), Z: float32(sc.Gravity[2])},
		Damping:               float32(sc.Damping),
		Box:                   box,
		GhostCount:            ghostCount,
		ClampNegativePressure: sc.ClampNegativePressure,
	}
	if sc.Integrator == "euler" {
		params.Integrator = fluid.IntegratorEuler
	}

	sim := fluid.NewSimulation(params)
	state := sim.State()

	if ghostCount > 0 {
		fluid.SeedFloorLayer(state.Positions[:ghostCount], box, h/2, h/2)
	}

	// Dam-break column filling the left half of the box, one smoothing
	// radius clear of the walls.
	origin := fluid.Vec3{X: h, Y: h, Z: h}
	size := fluid.Vec3{X: box.X/2 - h, Y: box.Y - 2*h, Z: box.Z - 2*h}
	fluid.SeedBlock(state.Positions[ghostCount:], rng, origin, size)

	return sim
}

func runHeadless(sim *fluid.Simulation, cfg *config.Config, perf *telemetry.PerfStats,
	output *telemetry.OutputManager, logStats bool, maxSteps, stepsPerUpdate int) {

	dt := float32(cfg.Simulation.DT)
	window := cfg.Telemetry.StatsWindowSteps
	if window <= 0 {
		window = 120
	}
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	var step int64
	simTime := 0.0

	for {
		for i := 0; i < stepsPerUpdate; i++ {
			sim.Step(dt)
			step++
			simTime += float64(dt)

			if step%int64(window) == 0 {
				flushWindow(sim, perf, output, logStats, step, simTime)
			}

			if maxSteps > 0 && step >= int64(maxSteps) {
				flushWindow(sim, perf, output, logStats, step, simTime)
				slog.Info("max steps reached", "step", step, "sim_time", simTime)
				return
			}
		}
	}
}

func flushWindow(sim *fluid.Simulation, perf *telemetry.PerfStats,
	output *telemetry.OutputManager, logStats bool, step int64, simTime float64) {

	stats := telemetry.Collect(sim.State(), sim.Params().Mass, sim.Params().GhostCount, step, simTime)

	if logStats {
		slog.Info("window stats",
			"step", stats.Step,
			"sim_time", stats.SimTime,
			"density_mean", stats.DensityMean,
			"density_p90", stats.DensityP90,
			"speed_mean", stats.SpeedMean,
			"speed_max", stats.SpeedMax,
			"kinetic_energy", stats.KineticEnergy,
			"step_time", perf.Total().String(),
		)
	}

	if err := output.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := output.WritePerf(perf.Snapshot(step)); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
