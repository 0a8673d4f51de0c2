// Package fluid implements a grid-based incompressible flow solver for the
// microfluidic channel visualization. The solver owns a fixed-size cell
// lattice at a fraction of the render resolution and advances velocity and
// pressure fields through a fixed per-step pass ordering.
package fluid

import "math"

// VectorField is a double-buffered 2D velocity field stored as flat
// component slices. Kernel passes read the current generation (U, V) and
// write the next generation, then Swap promotes the written buffers.
type VectorField struct {
	W, H int

	// Current generation
	U, V []float32

	// Next generation, promoted by Swap
	un, vn []float32
}

// NewVectorField allocates a zeroed double-buffered vector field.
func NewVectorField(w, h int) *VectorField {
	n := w * h
	return &VectorField{
		W: w, H: h,
		U:  make([]float32, n),
		V:  make([]float32, n),
		un: make([]float32, n),
		vn: make([]float32, n),
	}
}

// Next returns the write-side buffers for the current pass.
func (f *VectorField) Next() (u, v []float32) {
	return f.un, f.vn
}

// Swap promotes the next-generation buffers to current. O(1), no copy.
func (f *VectorField) Swap() {
	f.U, f.un = f.un, f.U
	f.V, f.vn = f.vn, f.V
}

// ScalarField is a double-buffered 2D scalar field.
type ScalarField struct {
	W, H int

	// Current generation
	S []float32

	sn []float32
}

// NewScalarField allocates a zeroed double-buffered scalar field.
func NewScalarField(w, h int) *ScalarField {
	n := w * h
	return &ScalarField{
		W: w, H: h,
		S:  make([]float32, n),
		sn: make([]float32, n),
	}
}

// Next returns the write-side buffer for the current pass.
func (f *ScalarField) Next() []float32 {
	return f.sn
}

// Swap promotes the next-generation buffer to current. O(1), no copy.
func (f *ScalarField) Swap() {
	f.S, f.sn = f.sn, f.S
}

// Zero clears both generations.
func (f *ScalarField) Zero() {
	for i := range f.S {
		f.S[i] = 0
		f.sn[i] = 0
	}
}

// sampleBilinear interpolates a flat grid at fractional cell coordinates.
// Coordinates are clamped to the valid range; the channel domain does not
// wrap.
func sampleBilinear(grid []float32, w, h int, x, y float32) float32 {
	x = clampf(x, 0, float32(w-1))
	y = clampf(y, 0, float32(h-1))

	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}

	tx := x - float32(x0)
	ty := y - float32(y0)

	a := grid[y0*w+x0] + (grid[y0*w+x1]-grid[y0*w+x0])*tx
	b := grid[y1*w+x0] + (grid[y1*w+x1]-grid[y1*w+x0])*tx
	return a + (b-a)*ty
}
