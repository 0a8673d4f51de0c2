package fluid

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// FlowNoise generates the deterministic disturbance terms injected into the
// velocity field. Every value is a pure function of (position, clock) for a
// fixed seed, so two runs with identical clock progression produce identical
// fields.
type FlowNoise struct {
	n opensimplex.Noise
}

// NewFlowNoise creates a noise source with a fixed seed.
func NewFlowNoise(seed int64) *FlowNoise {
	return &FlowNoise{n: opensimplex.New(seed)}
}

// Eval returns simplex noise in [-1, 1] at scaled cell coordinates.
func (fn *FlowNoise) Eval(x, y, t float32) float32 {
	return float32(fn.n.Eval3(float64(x), float64(y), float64(t)))
}

// Curl returns a divergence-free 2D vector derived from the simplex field's
// rotated gradient. scale converts cell coordinates into noise space; t
// animates the field over the simulation clock.
func (fn *FlowNoise) Curl(x, y, t, scale float32) (float32, float32) {
	const eps = 0.5

	sx := float64(x * scale)
	sy := float64(y * scale)
	st := float64(t)

	dpdy := (fn.n.Eval3(sx, sy+eps, st) - fn.n.Eval3(sx, sy-eps, st)) / (2 * eps)
	dpdx := (fn.n.Eval3(sx+eps, sy, st) - fn.n.Eval3(sx-eps, sy, st)) / (2 * eps)

	return float32(dpdy), float32(-dpdx)
}

// hashCell generates a pseudo-random float in [0,1) from cell coordinates and
// a quantized clock value. Used for the incoherent wobble terms where smooth
// noise would look too organized.
func hashCell(x, y int, clockQ uint32, seed uint32) float32 {
	hx := uint32(x)
	hy := uint32(y)
	h := hx*374761393 + hy*668265263 + clockQ*1442695041 + seed*2654435761
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0x00FFFFFF) / float32(0x01000000)
}
