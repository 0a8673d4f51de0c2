package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/microflow/config"
)

func init() {
	config.MustInit("")
}

func newHeadlessApp(t *testing.T, outputDir string) *App {
	t.Helper()
	a := NewAppWithOptions(Options{
		Seed:           7,
		StatsWindowSec: 0.1,
		OutputDir:      outputDir,
		Headless:       true,
		StepsPerUpdate: 1,
	})
	t.Cleanup(a.Unload)
	return a
}

func TestHeadlessRunAdvances(t *testing.T) {
	a := newHeadlessApp(t, "")

	for i := 0; i < 30; i++ {
		a.UpdateHeadless()
	}

	if a.Tick() != 30 {
		t.Errorf("tick = %d after 30 updates, want 30", a.Tick())
	}
	if a.tracers.Count() == 0 {
		t.Error("no tracer particles spawned")
	}
}

func TestHeadlessOutputFiles(t *testing.T) {
	dir := t.TempDir()
	a := newHeadlessApp(t, dir)

	// 0.1s window at 60Hz flushes every 6 ticks
	for i := 0; i < 20; i++ {
		a.UpdateHeadless()
	}

	for _, name := range []string{"telemetry.csv", "perf.csv", "obstacles.csv", "config.yaml"} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("missing output file %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("output file %s is empty", name)
		}
	}
}

func TestObstacleSceneSeeded(t *testing.T) {
	a := newHeadlessApp(t, "")
	b := newHeadlessApp(t, "")

	obsA := a.sim.Obstacles()
	obsB := b.sim.Obstacles()
	if len(obsA) == 0 {
		t.Fatal("no obstacles generated")
	}
	if len(obsA) != len(obsB) {
		t.Fatalf("obstacle counts differ: %d vs %d", len(obsA), len(obsB))
	}
	for i := range obsA {
		if obsA[i] != obsB[i] {
			t.Errorf("obstacle %d differs: %+v vs %+v", i, obsA[i], obsB[i])
		}
	}
}

func TestStepsPerUpdateClamped(t *testing.T) {
	a := NewAppWithOptions(Options{Seed: 1, Headless: true, StepsPerUpdate: 0})
	defer a.Unload()

	a.UpdateHeadless()
	if a.Tick() != 1 {
		t.Errorf("tick = %d, want 1 with clamped steps-per-update", a.Tick())
	}
}
