// Package app wires the solver, tracer particles, telemetry, and rendering
// into a runnable visualization.
package app

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/microflow/config"
	"github.com/pthm-cable/microflow/fluid"
	"github.com/pthm-cable/microflow/particles"
	"github.com/pthm-cable/microflow/renderer"
	"github.com/pthm-cable/microflow/telemetry"
	"github.com/pthm-cable/microflow/ui"
)

// Options configures a new App.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// App owns the solver and everything around it.
type App struct {
	sim     *fluid.Simulation
	tracers *particles.System

	// Graphics side, nil in headless mode
	fields      *renderer.FieldRenderer
	tracerDraw  *renderer.TracerRenderer
	overlays    *ui.OverlayRegistry
	controls    *ui.ControlsPanel
	quickStats  *ui.QuickStatsPanel
	paramsPanel *ui.ParamsPanel
	hud         *ui.HUD
	perfPanel   *ui.PerfPanel

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	rng *rand.Rand

	// Edits staged by input handling, applied at the next step boundary
	params         fluid.Params
	paramsDirty    bool
	obstacles      []fluid.Obstacle
	obstaclesDirty bool

	tick           int32
	stepsPerUpdate int
	paused         bool
	headless       bool
	logStats       bool
	snapshotDir    string

	width, height float32
}

// NewAppWithOptions creates the app from the loaded config and options.
func NewAppWithOptions(opts Options) *App {
	cfg := config.Cfg()

	width := float32(cfg.Screen.Width)
	height := float32(cfg.Screen.Height)
	gridW := cfg.Derived.GridW
	gridH := cfg.Derived.GridH

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	a := &App{
		rng:            rand.New(rand.NewSource(opts.Seed)),
		stepsPerUpdate: opts.StepsPerUpdate,
		headless:       opts.Headless,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		width:          width,
		height:         height,
	}

	a.params = fluid.ParamsFromConfig(cfg)
	sim, err := fluid.New(gridW, gridH, width, height, a.params)
	if err != nil {
		// The sim degrades to returning the default flow; keep going so the
		// visualization still runs.
		slog.Error("solver init failed, running uninitialized", "error", err)
	}
	a.sim = sim

	a.obstacles = a.generateObstacles(cfg)
	a.sim.UploadObstacles(a.obstacles, cfg.Grid.WallThickness)

	a.tracers = particles.NewSystem(width, height, a.sim, opts.Seed, cfg)

	a.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	a.sim.SetPhaseTimer(a.perf)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	a.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("output disabled", "error", err)
	} else {
		a.output = output
		if err := a.output.WriteConfig(cfg); err != nil {
			slog.Error("writing config snapshot", "error", err)
		}
		a.writeObstacleRecords()
	}

	if !opts.Headless {
		a.fields = renderer.NewFieldRenderer(gridW, gridH, width, height)
		a.tracerDraw = renderer.NewTracerRenderer(int32(width), int32(height))
		a.overlays = ui.NewOverlayRegistry()
		a.overlays.SetEnabled(ui.OverlayObstacles, true)
		a.overlays.SetEnabled(ui.OverlayTracers, true)
		a.controls = ui.NewControlsPanel(10, 100, 240)
		a.quickStats = ui.NewQuickStatsPanel(10, int32(height)-160, 240)
		a.paramsPanel = ui.NewParamsPanel(int32(width)-270, 10, 260)
		a.hud = ui.NewHUD()
		a.perfPanel = ui.NewPerfPanel(int32(width)-270, int32(height)-240)
	}

	return a
}

// generateObstacles builds the seeded pillar scenario. Pillars are kept off
// the walls and away from the inlet so the ramped inflow stays unobstructed.
func (a *App) generateObstacles(cfg *config.Config) []fluid.Obstacle {
	oc := cfg.Obstacles
	if oc.Count <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(oc.Seed))
	wallPx := float32(cfg.Grid.WallThickness) * a.sim.CellSize()

	obstacles := make([]fluid.Obstacle, 0, oc.Count)
	for i := 0; i < oc.Count; i++ {
		r := float32(oc.MinRadius) + rng.Float32()*float32(oc.MaxRadius-oc.MinRadius)
		x := a.width*0.2 + rng.Float32()*a.width*0.6
		yMin := wallPx + r
		yMax := a.height - wallPx - r
		if yMax <= yMin {
			continue
		}
		y := yMin + rng.Float32()*(yMax-yMin)
		obstacles = append(obstacles, fluid.Obstacle{X: x, Y: y, R: r})
	}
	return obstacles
}

// writeObstacleRecords mirrors the current obstacle layout to the output CSV.
func (a *App) writeObstacleRecords() {
	if a.output == nil {
		return
	}
	records := make([]telemetry.ObstacleRecord, len(a.obstacles))
	for i, ob := range a.obstacles {
		records[i] = telemetry.ObstacleRecord{
			Tick: a.tick,
			X:    float64(ob.X),
			Y:    float64(ob.Y),
			R:    float64(ob.R),
		}
	}
	if err := a.output.WriteObstacles(records); err != nil {
		slog.Error("writing obstacle records", "error", err)
	}
}

// Tick returns the current simulation tick.
func (a *App) Tick() int32 {
	return a.tick
}

// Unload releases solver workers, GPU resources, and output files.
func (a *App) Unload() {
	a.sim.Close()
	if a.fields != nil {
		a.fields.Unload()
	}
	if a.output != nil {
		if err := a.output.Close(); err != nil {
			slog.Error("closing output", "error", err)
		}
	}
}
