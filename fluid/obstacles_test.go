package fluid

import "testing"

func testParams() Params {
	return Params{
		DT:                1.0 / 60.0,
		ClockRate:         1,
		FlowSpeed:         12,
		Viscosity:         1.5,
		Dissipation:       0.995,
		PressureIters:     30,
		DiffusionIters:    4,
		VorticityStrength: 2,
		InflowWidth:       0.12,
		Turbulence:        1,
		ObstacleShrink:    0.9,
		CacheRefreshTicks: 5,
		NoiseSeed:         7,
		DefaultFlowX:      12,
		DefaultFlowY:      0,
	}
}

func newTestSim(t *testing.T, w, h int, p Params) *Simulation {
	t.Helper()
	s, err := New(w, h, float32(w)*5, float32(h)*5, p)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", w, h, err)
	}
	return s
}

func TestRasterizeWalls(t *testing.T) {
	s := newTestSim(t, 32, 32, testParams())
	s.UploadObstacles(nil, 4)

	for x := 0; x < 32; x++ {
		for y := 0; y < 4; y++ {
			if !s.solid(x, y) {
				t.Fatalf("expected top wall cell (%d,%d) solid", x, y)
			}
		}
		for y := 28; y < 32; y++ {
			if !s.solid(x, y) {
				t.Fatalf("expected bottom wall cell (%d,%d) solid", x, y)
			}
		}
		if s.solid(x, 16) {
			t.Fatalf("expected mid-channel cell (%d,16) fluid", x)
		}
	}
}

func TestRasterizeObstacleShrink(t *testing.T) {
	p := testParams()
	s := newTestSim(t, 40, 40, p)

	// One circle centered on the domain, radius 10 cells in render units.
	r := 10 * s.CellSize()
	cx := 20 * s.CellSize()
	cy := 20 * s.CellSize()
	s.UploadObstacles([]Obstacle{{X: cx, Y: cy, R: r}}, 0)

	if !s.solid(20, 20) {
		t.Error("expected obstacle center solid")
	}
	// Cells between shrunk radius (9) and full radius (10) stay fluid so a
	// boundary layer can form.
	if s.solid(20+9, 20) {
		t.Error("expected rim cell outside shrunk radius to stay fluid")
	}
	if !s.solid(20+8, 20) {
		t.Error("expected cell inside shrunk radius solid")
	}
}

func TestRasterizeInvalidRadius(t *testing.T) {
	s := newTestSim(t, 24, 24, testParams())
	s.UploadObstacles([]Obstacle{
		{X: 60, Y: 60, R: 0},
		{X: 60, Y: 60, R: -15},
	}, 0)

	for i, m := range s.mask {
		if m != 0 {
			t.Fatalf("expected empty mask for non-positive radii, cell %d solid", i)
		}
	}
}

func TestUploadObstaclesReplacesMask(t *testing.T) {
	s := newTestSim(t, 24, 24, testParams())
	s.UploadObstacles([]Obstacle{{X: 60, Y: 60, R: 25}}, 0)
	if !s.solid(12, 12) {
		t.Fatal("expected obstacle cell solid after first upload")
	}

	s.UploadObstacles(nil, 0)
	if s.solid(12, 12) {
		t.Error("expected mask cleared after uploading empty obstacle list")
	}
}
