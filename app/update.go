package app

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/microflow/config"
	"github.com/pthm-cable/microflow/telemetry"
)

// Update runs one frame in graphics mode: input, then stepsPerUpdate solver
// ticks.
func (a *App) Update() {
	a.handleInput()

	if a.paused {
		return
	}

	for i := 0; i < a.stepsPerUpdate; i++ {
		a.step()
	}
}

// UpdateHeadless runs stepsPerUpdate solver ticks without any input or
// graphics work.
func (a *App) UpdateHeadless() {
	for i := 0; i < a.stepsPerUpdate; i++ {
		a.step()
	}
}

// step advances the simulation one tick. Geometry and parameter edits staged
// by input handling are applied here, at the step boundary, so the solver
// never sees mid-step mutation.
func (a *App) step() {
	a.applyPending()

	a.perf.StartTick()
	a.sim.Step(a.tick)

	a.perf.StartPhase(telemetry.PhaseParticles)
	a.tracers.Update()

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	if a.collector.ShouldFlush(a.tick) {
		a.flushTelemetry()
	}
	a.perf.EndTick()

	a.tick++
}

// applyPending pushes staged obstacle and parameter edits into the solver.
func (a *App) applyPending() {
	if a.obstaclesDirty {
		a.sim.UploadObstacles(a.obstacles, config.Cfg().Grid.WallThickness)
		a.writeObstacleRecords()
		a.obstaclesDirty = false
	}
	if a.paramsDirty {
		a.sim.SetParams(a.params)
		a.paramsDirty = false
	}
}

// flushTelemetry samples the solver fields, emits a stats window, and
// writes CSV rows if output is enabled.
func (a *App) flushTelemetry() {
	sample := a.fieldSample()
	stats := a.collector.Flush(a.tick, sample)

	if a.logStats {
		stats.LogStats()
		a.perf.Stats().LogStats()
	}

	if a.output != nil {
		if err := a.output.WriteTelemetry(stats); err != nil {
			slog.Error("writing telemetry", "error", err)
		}
		if err := a.output.WritePerf(a.perf.Stats(), a.tick); err != nil {
			slog.Error("writing perf", "error", err)
		}
	}
}

// fieldSample reads the solver's cached fields into a telemetry sample.
// Speeds and pressures are collected over fluid cells only.
func (a *App) fieldSample() telemetry.FieldSample {
	u, v := a.sim.CachedVelocity()
	pressure := a.sim.CachedPressure()
	mask := a.sim.Mask()

	solidCells := 0
	speeds := make([]float64, 0, len(mask))
	pressures := make([]float64, 0, len(mask))
	for i := range mask {
		if mask[i] != 0 {
			solidCells++
			continue
		}
		speeds = append(speeds, hypot64(u[i], v[i]))
		pressures = append(pressures, float64(pressure[i]))
	}

	return telemetry.FieldSample{
		MeanAbsDivergence: float64(a.sim.MeanAbsDivergence()),
		Speeds:            speeds,
		Pressures:         pressures,
		ObstacleCount:     len(a.sim.Obstacles()),
		SolidCells:        solidCells,
		ParticleCount:     a.tracers.Count(),
	}
}

func hypot64(x, y float32) float64 {
	fx := float64(x)
	fy := float64(y)
	return math.Sqrt(fx*fx + fy*fy)
}
