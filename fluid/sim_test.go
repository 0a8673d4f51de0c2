package fluid

import (
	"math"
	"testing"
)

// fillTestVelocity writes a smooth, divergent velocity pattern used by the
// projection tests.
func fillTestVelocity(s *Simulation) {
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			i := y*s.w + x
			s.vel.U[i] = 5 * float32(math.Sin(float64(x)*0.3)*math.Cos(float64(y)*0.2))
			s.vel.V[i] = 3 * float32(math.Cos(float64(x)*0.25)*math.Sin(float64(y)*0.35))
		}
	}
}

func TestMaskInvariant(t *testing.T) {
	s := newTestSim(t, 48, 32, testParams())
	s.UploadObstacles([]Obstacle{{X: 120, Y: 80, R: 30}}, 4)

	for tick := int32(1); tick <= 30; tick++ {
		s.Step(tick)
	}

	for i, m := range s.mask {
		if m != 0 && (s.vel.U[i] != 0 || s.vel.V[i] != 0) {
			t.Fatalf("solid cell %d has nonzero velocity (%f, %f)", i, s.vel.U[i], s.vel.V[i])
		}
	}
}

func TestNoPenetration(t *testing.T) {
	s := newTestSim(t, 32, 32, testParams())
	s.UploadObstacles([]Obstacle{{X: 80, Y: 80, R: 25}}, 0)

	// Point every fluid cell straight at the obstacle center.
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			i := y*s.w + x
			s.vel.U[i] = float32(16 - x)
			s.vel.V[i] = float32(16 - y)
		}
	}
	s.enforceBoundaries()

	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			i := y*s.w + x
			if s.mask[i] != 0 {
				if s.vel.U[i] != 0 || s.vel.V[i] != 0 {
					t.Fatalf("solid cell (%d,%d) not zeroed", x, y)
				}
				continue
			}
			if s.solid(x-1, y) && s.vel.U[i] < 0 {
				t.Fatalf("cell (%d,%d) flows into solid left neighbor: u=%f", x, y, s.vel.U[i])
			}
			if s.solid(x+1, y) && s.vel.U[i] > 0 {
				t.Fatalf("cell (%d,%d) flows into solid right neighbor: u=%f", x, y, s.vel.U[i])
			}
			if s.solid(x, y-1) && s.vel.V[i] < 0 {
				t.Fatalf("cell (%d,%d) flows into solid upper neighbor: v=%f", x, y, s.vel.V[i])
			}
			if s.solid(x, y+1) && s.vel.V[i] > 0 {
				t.Fatalf("cell (%d,%d) flows into solid lower neighbor: v=%f", x, y, s.vel.V[i])
			}
		}
	}
}

func TestIncompressibilityConvergence(t *testing.T) {
	residualFor := func(iters int) float32 {
		p := testParams()
		p.PressureIters = iters
		s := newTestSim(t, 48, 48, p)
		fillTestVelocity(s)

		s.computeDivergence()
		s.solvePressure()
		s.subtractGradient()
		return s.ResidualDivergence()
	}

	r5 := residualFor(5)
	r20 := residualFor(20)
	r60 := residualFor(60)

	const tol = 1e-6
	if r20 > r5+tol {
		t.Errorf("expected residual divergence to shrink with more iterations: 5 iters %.6f, 20 iters %.6f", r5, r20)
	}
	if r60 > r20+tol {
		t.Errorf("expected residual divergence to shrink with more iterations: 20 iters %.6f, 60 iters %.6f", r20, r60)
	}
	if r60 >= r5 {
		t.Errorf("expected strict improvement from 5 to 60 iterations, got %.6f -> %.6f", r5, r60)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() *Simulation {
		s := newTestSim(t, 48, 32, testParams())
		s.UploadObstacles([]Obstacle{{X: 110, Y: 80, R: 28}}, 4)
		for tick := int32(1); tick <= 50; tick++ {
			s.Step(tick)
		}
		return s
	}

	a := run()
	b := run()

	for i := range a.vel.U {
		if a.vel.U[i] != b.vel.U[i] || a.vel.V[i] != b.vel.V[i] {
			t.Fatalf("velocity fields diverged at cell %d: (%v,%v) vs (%v,%v)",
				i, a.vel.U[i], a.vel.V[i], b.vel.U[i], b.vel.V[i])
		}
	}
}

func TestAdvectionObstacleSafety(t *testing.T) {
	s := newTestSim(t, 32, 32, testParams())
	s.UploadObstacles([]Obstacle{{X: 80, Y: 80, R: 30}}, 0)

	// A cell just right of the obstacle with strong rightward flow
	// backtraces into solid geometry.
	x, y := 23, 16
	if s.solid(x, y) {
		t.Fatal("test cell unexpectedly solid")
	}
	vx, vy := float32(40), float32(0)
	sx := float32(x) - vx*s.p.DT*10 // exaggerate to land deep inside
	sy := float32(y)
	if !s.solidAtF(sx, sy) {
		t.Fatalf("test setup: naive source (%f,%f) should be solid", sx, sy)
	}

	gx, gy := s.safeSource(x, y, vx, vy, sx, sy)
	if s.solidAtF(gx, gy) {
		t.Errorf("safe source (%f,%f) still inside solid geometry", gx, gy)
	}
}

func TestChannelScenario(t *testing.T) {
	p := testParams()
	s := newTestSim(t, 96, 48, p)
	s.UploadObstacles(nil, 4)

	for tick := int32(1); tick <= 200; tick++ {
		s.Step(tick)
	}

	var sum float32
	var n int
	for i, m := range s.mask {
		if m == 0 {
			sum += s.vel.U[i]
			n++
		}
	}
	mean := sum / float32(n)

	if mean <= 0 {
		t.Errorf("expected positive mean x-velocity in driven channel, got %f", mean)
	}
	if mean > p.FlowSpeed*1.5 {
		t.Errorf("mean x-velocity %f exceeds 1.5x flow speed %f", mean, p.FlowSpeed)
	}
}

func TestObstacleScenario(t *testing.T) {
	p := testParams()
	s := newTestSim(t, 96, 48, p)
	cx := 48 * s.CellSize()
	cy := 24 * s.CellSize()
	s.UploadObstacles([]Obstacle{{X: cx, Y: cy, R: 8 * s.CellSize()}}, 4)

	for tick := int32(1); tick <= 100; tick++ {
		s.Step(tick)
	}

	// Velocity inside the obstacle is zero.
	for dy := -5; dy <= 5; dy++ {
		for dx := -5; dx <= 5; dx++ {
			x, y := 48+dx, 24+dy
			i := y*s.w + x
			if s.mask[i] != 0 && (s.vel.U[i] != 0 || s.vel.V[i] != 0) {
				t.Fatalf("velocity inside obstacle at (%d,%d): (%f,%f)", x, y, s.vel.U[i], s.vel.V[i])
			}
		}
	}

	// Projection must reduce, not amplify, divergence immediately downstream.
	downstreamDiv := func() float32 {
		var sum float32
		var n int
		for y := 18; y <= 30; y++ {
			for x := 58; x <= 72; x++ {
				i := y*s.w + x
				if s.mask[i] == 0 {
					d := s.div[i]
					if d < 0 {
						d = -d
					}
					sum += d
					n++
				}
			}
		}
		return sum / float32(n)
	}

	s.injectForces()
	s.advect()
	s.diffuse()
	s.enforceBoundaries()
	s.computeDivergence()
	pre := downstreamDiv()

	s.solvePressure()
	s.subtractGradient()
	s.enforceBoundaries()
	s.computeDivergence()
	post := downstreamDiv()

	if post > pre*1.05 {
		t.Errorf("projection amplified downstream divergence: pre=%.6f post=%.6f", pre, post)
	}
}

func TestQueryBeforeFirstStep(t *testing.T) {
	p := testParams()
	s := newTestSim(t, 48, 32, p)

	vx, vy := s.QueryVelocity(100, 80)
	wantX := p.DefaultFlowX * s.CellSize()
	wantY := p.DefaultFlowY * s.CellSize()
	if vx != wantX || vy != wantY {
		t.Errorf("expected default flow (%f,%f) before first step, got (%f,%f)", wantX, wantY, vx, vy)
	}
	if s.QueryMaxVelocityMagnitude() != 0 {
		t.Errorf("expected zero max magnitude before first step")
	}
}

func TestQueryCacheStaleness(t *testing.T) {
	p := testParams()
	p.CacheRefreshTicks = 5
	s := newTestSim(t, 48, 32, p)
	s.UploadObstacles(nil, 4)

	s.Step(1)
	vx1, vy1 := s.QueryVelocity(120, 80)

	// Cache refreshed on first step, then holds until the interval elapses.
	for tick := int32(2); tick <= 5; tick++ {
		s.Step(tick)
		vx, vy := s.QueryVelocity(120, 80)
		if vx != vx1 || vy != vy1 {
			t.Fatalf("cache refreshed early at tick %d", tick)
		}
	}

	s.Step(6)
	vx6, vy6 := s.QueryVelocity(120, 80)
	if vx6 == vx1 && vy6 == vy1 {
		t.Log("cache value unchanged after refresh; field may genuinely match")
	}
}

func TestUninitializedDegradesGracefully(t *testing.T) {
	p := testParams()
	s, err := New(0, 0, 100, 100, p)
	if err == nil {
		t.Fatal("expected error for degenerate grid")
	}
	if s == nil {
		t.Fatal("expected usable simulation even on error")
	}
	if s.Initialized() {
		t.Error("expected uninitialized solver")
	}

	// Step is a no-op, queries return the default flow.
	s.Step(1)
	vx, vy := s.QueryVelocity(10, 10)
	if vx != p.DefaultFlowX || vy != p.DefaultFlowY {
		t.Errorf("expected default flow from uninitialized solver, got (%f,%f)", vx, vy)
	}
}

func BenchmarkStep(b *testing.B) {
	p := testParams()
	s, err := New(256, 144, 1280, 720, p)
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	s.UploadObstacles([]Obstacle{
		{X: 400, Y: 300, R: 50},
		{X: 700, Y: 420, R: 65},
	}, 4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(int32(i + 1))
	}
}

func BenchmarkQueryVelocity(b *testing.B) {
	s, err := New(256, 144, 1280, 720, testParams())
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()
	s.UploadObstacles(nil, 4)
	s.Step(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.QueryVelocity(float32(i%1280), float32(i%720))
	}
}
