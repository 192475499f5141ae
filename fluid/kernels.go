package fluid

import "math"

// kernels holds the precomputed smoothing kernel constants for a given
// smoothing radius h (Muller-style Poly6 / Spiky / viscosity-Laplacian).
// Powers of h are folded into the constants so the per-pair evaluation is
// a handful of multiplies.
type kernels struct {
	h  float32
	h2 float32

	poly6Const     float32 // 315 / (64 pi h^9)
	spikyGradConst float32 // -45 / (pi h^6)
	viscLapConst   float32 // 45 / (pi h^6)
}

func newKernels(h float32) kernels {
	h64 := float64(h)
	h6 := math.Pow(h64, 6)
	h9 := math.Pow(h64, 9)

	return kernels{
		h:              h,
		h2:             h * h,
		poly6Const:     float32(315.0 / (64.0 * math.Pi * h9)),
		spikyGradConst: float32(-45.0 / (math.Pi * h6)),
		viscLapConst:   float32(45.0 / (math.Pi * h6)),
	}
}

// Poly6 is the density estimation kernel, evaluated on the squared
// distance. Non-negative for r < h, zero at and beyond the support radius.
func (k *kernels) Poly6(r2 float32) float32 {
	if r2 >= k.h2 {
		return 0
	}
	d := k.h2 - r2
	return k.poly6Const * d * d * d
}

// SpikyGrad is the pressure gradient term. Negative inside the support
// radius, so a positive pairwise pressure pushes particles apart.
func (k *kernels) SpikyGrad(r float32) float32 {
	if r >= k.h {
		return 0
	}
	d := k.h - r
	return k.spikyGradConst * d * d * d
}

// ViscLap is the viscosity Laplacian term, linear in (h - r).
func (k *kernels) ViscLap(r float32) float32 {
	if r >= k.h {
		return 0
	}
	return k.viscLapConst * (k.h - r)
}
