package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowing(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0) // 60 ticks per window

	if c.WindowDurationTicks() != 60 {
		t.Fatalf("window = %d ticks, want 60", c.WindowDurationTicks())
	}

	if c.ShouldFlush(30) {
		t.Error("flush at tick 30 inside a 60-tick window")
	}
	if !c.ShouldFlush(60) {
		t.Error("no flush at tick 60")
	}

	stats := c.Flush(60, FieldSample{})
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 60 {
		t.Errorf("window [%d, %d], want [0, 60]", stats.WindowStartTick, stats.WindowEndTick)
	}

	// Next window starts where the last one ended
	if c.ShouldFlush(90) {
		t.Error("flush at tick 90 right after flushing at 60")
	}
	if !c.ShouldFlush(120) {
		t.Error("no flush at tick 120")
	}
}

func TestCollectorFlushStats(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	sample := FieldSample{
		MeanAbsDivergence: 0.001,
		Speeds:            []float64{1, 2, 3, 4, 10},
		Pressures:         []float64{-1, 0, 1},
		ObstacleCount:     3,
		SolidCells:        120,
		ParticleCount:     500,
	}

	stats := c.Flush(60, sample)

	if math.Abs(stats.SpeedMean-4.0) > 1e-9 {
		t.Errorf("speed mean = %v, want 4.0", stats.SpeedMean)
	}
	if stats.SpeedMax != 10 {
		t.Errorf("speed max = %v, want 10", stats.SpeedMax)
	}
	if math.Abs(stats.PressureMean) > 1e-9 {
		t.Errorf("pressure mean = %v, want 0", stats.PressureMean)
	}
	if stats.ObstacleCount != 3 || stats.SolidCells != 120 || stats.ParticleCount != 500 {
		t.Errorf("scene counts not carried: %+v", stats)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}
}
