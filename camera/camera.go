// Package camera provides an orbit camera for viewing the simulation box.
// It is pure math; the viewer translates it into the renderer's camera.
package camera

import "math"

// Orbit circles a target point at a fixed distance, controlled by yaw and
// pitch angles. Pitch is clamped short of the poles to keep the up vector
// well defined.
type Orbit struct {
	// Target is the point the camera looks at, in world coordinates.
	TargetX, TargetY, TargetZ float32

	Yaw      float32 // Radians around the world Y axis; 0 looks down -Z
	Pitch    float32 // Radians above the horizontal plane
	Distance float32

	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32
}

// New creates an orbit camera centered on the given target.
func New(targetX, targetY, targetZ, distance float32) *Orbit {
	return &Orbit{
		TargetX:     targetX,
		TargetY:     targetY,
		TargetZ:     targetZ,
		Yaw:         0,
		Pitch:       0.35,
		Distance:    distance,
		MinDistance: 0.5,
		MaxDistance: 20,
		MinPitch:    -1.45,
		MaxPitch:    1.45,
	}
}

// Rotate adjusts yaw and pitch by the given deltas, clamping pitch.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.Yaw += dYaw
	o.Pitch = clamp(o.Pitch+dPitch, o.MinPitch, o.MaxPitch)
}

// Zoom moves the camera along its view ray. Positive delta moves closer.
func (o *Orbit) Zoom(delta float32) {
	o.Distance = clamp(o.Distance-delta, o.MinDistance, o.MaxDistance)
}

// Position returns the camera's world position for the current orbit
// angles. At yaw 0 and pitch 0 the camera sits on the +Z side of the
// target.
func (o *Orbit) Position() (x, y, z float32) {
	cosPitch := float32(math.Cos(float64(o.Pitch)))

	x = o.TargetX + o.Distance*cosPitch*float32(math.Sin(float64(o.Yaw)))
	y = o.TargetY + o.Distance*float32(math.Sin(float64(o.Pitch)))
	z = o.TargetZ + o.Distance*cosPitch*float32(math.Cos(float64(o.Yaw)))
	return x, y, z
}

func clamp(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
