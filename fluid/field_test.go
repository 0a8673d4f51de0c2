package fluid

import "testing"

func TestVectorFieldSwap(t *testing.T) {
	f := NewVectorField(8, 8)

	un, vn := f.Next()
	un[10] = 1.5
	vn[10] = -2.5
	f.Swap()

	if f.U[10] != 1.5 || f.V[10] != -2.5 {
		t.Errorf("expected swapped buffers to expose written values, got u=%f v=%f", f.U[10], f.V[10])
	}

	f.Swap()
	if f.U[10] != 0 {
		t.Errorf("expected second swap to restore original buffer, got %f", f.U[10])
	}
}

func TestScalarFieldZero(t *testing.T) {
	f := NewScalarField(4, 4)
	f.S[3] = 9
	f.Next()[5] = 7
	f.Zero()

	for i := range f.S {
		if f.S[i] != 0 || f.sn[i] != 0 {
			t.Fatalf("expected both generations zeroed at %d, got %f / %f", i, f.S[i], f.sn[i])
		}
	}
}

func TestSampleBilinear(t *testing.T) {
	w, h := 4, 4
	grid := make([]float32, w*h)
	grid[1*w+1] = 1
	grid[1*w+2] = 3

	// Exact cell centers return the cell value
	if v := sampleBilinear(grid, w, h, 1, 1); v != 1 {
		t.Errorf("expected 1 at cell center, got %f", v)
	}

	// Midpoint between two cells interpolates
	if v := sampleBilinear(grid, w, h, 1.5, 1); v != 2 {
		t.Errorf("expected 2 at midpoint, got %f", v)
	}

	// Out-of-range coordinates clamp instead of wrapping
	if v := sampleBilinear(grid, w, h, -5, 1); v != sampleBilinear(grid, w, h, 0, 1) {
		t.Errorf("expected clamped sample, got %f", v)
	}
}
