package app

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/microflow/config"
	"github.com/pthm-cable/microflow/telemetry"
	"github.com/pthm-cable/microflow/ui"
)

// Draw renders one frame.
func (a *App) Draw() {
	a.perf.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 8, G: 10, B: 14, A: 255})

	u, v := a.sim.CachedVelocity()
	mask := a.sim.Mask()

	if a.overlays.IsEnabled(ui.OverlayPressure) {
		a.fields.UpdatePressure(a.sim.CachedPressure(), mask)
		a.fields.DrawField()
	} else if a.overlays.IsEnabled(ui.OverlaySpeed) {
		maxSpeed := a.sim.QueryMaxVelocityMagnitude() / a.sim.CellSize()
		a.fields.UpdateSpeed(u, v, mask, maxSpeed)
		a.fields.DrawField()
	}

	if a.overlays.IsEnabled(ui.OverlayObstacles) {
		a.fields.DrawObstacles(a.sim.Obstacles(), config.Cfg().Grid.WallThickness)
	}

	if a.overlays.IsEnabled(ui.OverlayVelocity) {
		a.fields.DrawVelocityArrows(u, v, mask)
	}

	if a.overlays.IsEnabled(ui.OverlayTracers) {
		a.tracerDraw.Draw(a.tracers.Views(), a.tick)
	}

	a.drawUI()

	rl.EndDrawing()
}

// drawUI renders HUD, panels, and live parameter sliders.
func (a *App) drawUI() {
	a.hud.Draw(ui.HUDData{
		Title:         "Microflow",
		Tick:          a.tick,
		Speed:         a.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        a.paused,
		ParticleCount: a.tracers.Count(),
		ObstacleCount: len(a.sim.Obstacles()),
		MeanAbsDiv:    a.sim.MeanAbsDivergence(),
		ScreenWidth:   int32(a.width),
		ScreenHeight:  int32(a.height),
	})
	a.hud.DrawControls(int32(a.width), int32(a.height),
		"[Space] Pause  [<>] Speed  [C] Overlays  [E] Params  [LMB] Add pillar  [RMB] Remove  [F5] Snapshot")

	a.controls.Draw(a.overlays)

	if a.overlays.IsEnabled(ui.OverlayStats) {
		a.drawStatsPanels()
	}

	if a.paramsPanel.Draw(&a.params) {
		a.paramsDirty = true
	}
}

// drawStatsPanels renders the quick stats and phase timing panels.
func (a *App) drawStatsPanels() {
	a.quickStats.Draw(ui.QuickStatsData{
		MeanAbsDivergence: a.sim.MeanAbsDivergence(),
		MaxSpeed:          a.sim.QueryMaxVelocityMagnitude(),
		ParticleCount:     a.tracers.Count(),
		ObstacleCount:     len(a.sim.Obstacles()),
	})

	stats := a.perf.Stats()
	phaseNames := []string{
		telemetry.PhaseForces, telemetry.PhaseAdvection, telemetry.PhaseDiffusion,
		telemetry.PhaseBoundary, telemetry.PhaseProjection, telemetry.PhaseVorticity,
		telemetry.PhaseReadback, telemetry.PhaseParticles, telemetry.PhaseTelemetry,
	}

	var total time.Duration
	phaseTimes := make(map[string]time.Duration, len(phaseNames))
	for _, name := range phaseNames {
		phaseTimes[name] = stats.PhaseAvg[name]
		total += stats.PhaseAvg[name]
	}

	a.perfPanel.Draw(ui.PerfPanelData{PhaseTimes: phaseTimes, Total: total}, phaseNames)
}
