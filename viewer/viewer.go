// Package viewer renders the simulation state: particles colored by
// density inside a wireframe bounding box, with an orbit camera and a
// small control panel. It only reads the position and density arrays the
// solver exports after each step.
package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/leon3428/sploosh/camera"
	"github.com/leon3428/sploosh/config"
	"github.com/leon3428/sploosh/fluid"
)

const (
	mouseSensitivity = 0.005
	zoomSensitivity  = 0.3
)

// Viewer drives the interactive loop around a Simulation.
type Viewer struct {
	sim   *fluid.Simulation
	orbit *camera.Orbit

	displaySize float32
	paused      bool
	maxFrameDT  float32
	restDensity float32
}

// New creates a viewer for the given simulation.
func New(sim *fluid.Simulation, cfg *config.Config) *Viewer {
	box := sim.Params().Box

	orbit := camera.New(box.X/2, box.Y/2, box.Z/2, float32(cfg.Viewer.OrbitDistance))

	return &Viewer{
		sim:         sim,
		orbit:       orbit,
		displaySize: float32(cfg.Viewer.ParticleDisplaySize),
		paused:      cfg.Viewer.StartPaused,
		maxFrameDT:  float32(cfg.Simulation.MaxFrameDT),
		restDensity: sim.Params().RestDensity,
	}
}

// Update handles input and advances the simulation by the frame time.
func (v *Viewer) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		delta := rl.GetMouseDelta()
		v.orbit.Rotate(-delta.X*mouseSensitivity, delta.Y*mouseSensitivity)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.orbit.Zoom(wheel * zoomSensitivity)
	}

	if v.paused {
		return
	}

	dt := rl.GetFrameTime()
	if dt > v.maxFrameDT {
		dt = v.maxFrameDT
	}
	v.sim.Step(dt)
}

// Draw renders the current state.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.BeginMode3D(v.camera3D())
	v.drawBox()
	v.drawParticles()
	rl.EndMode3D()

	v.drawPanel()

	rl.EndDrawing()
}

func (v *Viewer) camera3D() rl.Camera3D {
	x, y, z := v.orbit.Position()
	return rl.Camera3D{
		Position:   rl.Vector3{X: x, Y: y, Z: z},
		Target:     rl.Vector3{X: v.orbit.TargetX, Y: v.orbit.TargetY, Z: v.orbit.TargetZ},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func (v *Viewer) drawBox() {
	box := v.sim.Params().Box
	center := rl.Vector3{X: box.X / 2, Y: box.Y / 2, Z: box.Z / 2}
	size := rl.Vector3{X: box.X, Y: box.Y, Z: box.Z}
	rl.DrawCubeWiresV(center, size, rl.Gray)
}

func (v *Viewer) drawParticles() {
	state := v.sim.State()
	for i, pos := range state.Positions {
		color := densityColor(state.Densities[i], v.restDensity)
		rl.DrawSphereEx(rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, v.displaySize, 4, 6, color)
	}
}

func (v *Viewer) drawPanel() {
	status := "running"
	if v.paused {
		status = "paused (space to resume)"
	}
	rl.DrawText(fmt.Sprintf("Simulation %s", status), 10, 10, 18, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 10, 32, 18, rl.RayWhite)

	rl.DrawText("Particle display size", 10, 60, 14, rl.LightGray)
	v.displaySize = gui.SliderBar(
		rl.Rectangle{X: 10, Y: 78, Width: 180, Height: 16},
		"0.001", "0.05",
		v.displaySize, 0.001, 0.05,
	)
}

// densityColor maps density relative to rest density onto a blue-to-white
// ramp: sparse regions render deep blue, compressed regions near white.
func densityColor(rho, rest float32) rl.Color {
	t := rho / (2 * rest)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return rl.Color{
		R: uint8(40 + 215*t),
		G: uint8(90 + 165*t),
		B: 255,
		A: 255,
	}
}
