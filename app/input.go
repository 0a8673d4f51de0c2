package app

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/microflow/fluid"
	"github.com/pthm-cable/microflow/telemetry"
)

const (
	minEditRadius = 12
	maxEditRadius = 80
)

// handleInput processes keyboard and mouse input for one frame.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.stepsPerUpdate > 1 {
		a.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.stepsPerUpdate < 10 {
		a.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyC) {
		a.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		a.paramsPanel.Toggle()
	}

	if rl.IsKeyPressed(rl.KeyF5) {
		a.saveSnapshot()
	}

	key := rl.GetKeyPressed()
	for key != 0 {
		a.overlays.HandleKeyPress(key)
		key = rl.GetKeyPressed()
	}

	a.handleMouse()
}

// handleMouse stages obstacle edits: left click adds a pillar, right click
// removes the pillar under the cursor. The rebuild happens at the next step
// boundary.
func (a *App) handleMouse() {
	// Ignore clicks over the open panels
	if a.paramsPanel.IsVisible() || a.controls.IsVisible() {
		mouse := rl.GetMousePosition()
		if mouse.X < 260 || mouse.X > a.width-280 {
			return
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		mouse := rl.GetMousePosition()
		r := float32(minEditRadius) + a.rng.Float32()*float32(maxEditRadius-minEditRadius)
		a.obstacles = append(a.obstacles, fluid.Obstacle{X: mouse.X, Y: mouse.Y, R: r})
		a.obstaclesDirty = true
	}

	if rl.IsMouseButtonPressed(rl.MouseRightButton) {
		mouse := rl.GetMousePosition()
		for i, ob := range a.obstacles {
			dx := mouse.X - ob.X
			dy := mouse.Y - ob.Y
			if dx*dx+dy*dy <= ob.R*ob.R {
				a.obstacles = append(a.obstacles[:i], a.obstacles[i+1:]...)
				a.obstaclesDirty = true
				break
			}
		}
	}
}

// saveSnapshot dumps the solver's cached state to the snapshot directory.
func (a *App) saveSnapshot() {
	if a.snapshotDir == "" {
		return
	}

	u, v := a.sim.CachedVelocity()
	gridW, gridH := a.sim.GridSize()

	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Tick:       a.tick,
		GridWidth:  gridW,
		GridHeight: gridH,
		CellSize:   a.sim.CellSize(),
		U:          append([]float32(nil), u...),
		V:          append([]float32(nil), v...),
		Pressure:   append([]float32(nil), a.sim.CachedPressure()...),
		Mask:       append([]uint8(nil), a.sim.Mask()...),
	}
	for _, ob := range a.sim.Obstacles() {
		snapshot.Obstacles = append(snapshot.Obstacles, telemetry.SnapshotObstacle{X: ob.X, Y: ob.Y, R: ob.R})
	}

	path, err := telemetry.SaveSnapshot(snapshot, a.snapshotDir)
	if err != nil {
		slog.Error("saving snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", a.tick)
}
