package particles

import (
	"testing"

	"github.com/pthm-cable/microflow/config"
)

func init() {
	config.MustInit("")
}

// uniformFlow is a FlowSampler with constant rightward flow and an optional
// solid band.
type uniformFlow struct {
	vx, vy           float32
	solidX0, solidX1 float32
}

func (f *uniformFlow) QueryVelocity(x, y float32) (float32, float32) {
	return f.vx, f.vy
}

func (f *uniformFlow) QuerySolid(x, y float32) bool {
	return f.solidX1 > f.solidX0 && x >= f.solidX0 && x <= f.solidX1
}

func newTestSystem(flow FlowSampler) *System {
	return NewSystem(640, 360, flow, 99, config.Cfg())
}

func TestSpawnRampsToTarget(t *testing.T) {
	s := newTestSystem(&uniformFlow{vx: 60})
	target := config.Cfg().Particles.TargetCount
	spawnRate := config.Cfg().Particles.SpawnRate

	s.Update()
	if s.Count() > spawnRate {
		t.Errorf("first tick spawned %d particles, spawn rate is %d", s.Count(), spawnRate)
	}

	for i := 0; i < 200; i++ {
		s.Update()
	}
	if s.Count() != target {
		t.Errorf("population = %d after 200 ticks, want target %d", s.Count(), target)
	}
}

func TestParticlesDriftDownstream(t *testing.T) {
	s := newTestSystem(&uniformFlow{vx: 120})
	for i := 0; i < 60; i++ {
		s.Update()
	}

	views := s.Views()
	if len(views) == 0 {
		t.Fatal("no particles after 60 ticks")
	}
	var meanX float32
	for _, v := range views {
		meanX += v.X
	}
	meanX /= float32(len(views))

	// Spawns happen in the leftmost 5% of the channel; with steady
	// rightward flow the population mean must sit past the spawn band.
	if meanX <= 640*0.05 {
		t.Errorf("mean particle x = %.1f, expected drift past spawn band %.1f", meanX, 640*0.05)
	}
}

func TestOutflowRecyclesParticles(t *testing.T) {
	s := newTestSystem(&uniformFlow{vx: 10000})
	for i := 0; i < 400; i++ {
		s.Update()
	}

	for _, v := range s.Views() {
		if v.X > 640 {
			t.Errorf("particle at x=%.1f survived past the outlet", v.X)
		}
	}
	if s.Count() == 0 {
		t.Error("population collapsed, spawning should replace outflow losses")
	}
}

func TestParticlesDoNotTunnelObstacles(t *testing.T) {
	flow := &uniformFlow{vx: 200, solidX0: 300, solidX1: 340}
	s := newTestSystem(flow)
	for i := 0; i < 400; i++ {
		s.Update()
	}

	for _, v := range s.Views() {
		if flow.QuerySolid(v.X, v.Y) {
			t.Errorf("particle inside solid region at (%.1f, %.1f)", v.X, v.Y)
		}
	}
}

func TestTrailHistory(t *testing.T) {
	s := newTestSystem(&uniformFlow{vx: 60})
	for i := 0; i < 20; i++ {
		s.Update()
	}

	views := s.Views()
	if len(views) == 0 {
		t.Fatal("no particles")
	}
	found := false
	for _, v := range views {
		if v.Tracer.TrailLen == trailLen {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("no particle accumulated a full %d-slot trail after 20 ticks", trailLen)
	}
}

func BenchmarkParticleUpdate(b *testing.B) {
	s := newTestSystem(&uniformFlow{vx: 60})
	for i := 0; i < 120; i++ {
		s.Update()
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Update()
	}
}
