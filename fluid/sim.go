package fluid

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/microflow/config"
)

// Params holds every numeric knob of the solver. A Simulation owns its own
// copy; independent instances never share state.
type Params struct {
	DT                float32
	ClockRate         float32
	FlowSpeed         float32 // cells per second at the inlet
	Viscosity         float32
	Dissipation       float32
	PressureIters     int
	DiffusionIters    int
	VorticityStrength float32
	InflowWidth       float32 // fraction of domain width
	Turbulence        float32
	ObstacleShrink    float32
	CacheRefreshTicks int
	NoiseSeed         int64
	DefaultFlowX      float32 // cells per second, returned before the first snapshot
	DefaultFlowY      float32
}

// ParamsFromConfig builds solver parameters from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	f := cfg.Fluid
	return Params{
		DT:                float32(f.DT),
		ClockRate:         float32(f.ClockRate),
		FlowSpeed:         float32(f.FlowSpeed),
		Viscosity:         float32(f.Viscosity),
		Dissipation:       float32(f.Dissipation),
		PressureIters:     f.PressureIters,
		DiffusionIters:    f.DiffusionIters,
		VorticityStrength: float32(f.VorticityStrength),
		InflowWidth:       float32(f.InflowWidth),
		Turbulence:        float32(f.Turbulence),
		ObstacleShrink:    float32(f.ObstacleShrink),
		CacheRefreshTicks: f.CacheRefreshTicks,
		NoiseSeed:         f.NoiseSeed,
		DefaultFlowX:      float32(f.DefaultFlowX),
		DefaultFlowY:      float32(f.DefaultFlowY),
	}
}

// Simulation is one independent solver instance over a W x H cell grid
// covering a renderW x renderH pixel domain. Step must not be called
// concurrently with itself or with UploadObstacles; velocity queries are
// read-only and may come from any goroutine.
type Simulation struct {
	w, h     int
	renderW  float32
	renderH  float32
	cellSize float32 // render pixels per cell

	p Params

	vel     *VectorField
	pr      *ScalarField
	div     []float32
	vort    []float32
	absVort []float32
	mask    []uint8

	obstacles     []Obstacle
	wallThickness int

	noise *FlowNoise
	disp  *dispatcher
	timer PhaseTimer

	clock       float32
	initialized bool

	// CPU-visible snapshots, refreshed every CacheRefreshTicks steps and on
	// the very first step. Queries between refreshes see bounded-stale data.
	cacheMu         sync.RWMutex
	cacheU          []float32
	cacheV          []float32
	cacheP          []float32
	cacheReady      bool
	lastRefreshTick int32
}

// New creates a solver instance. The returned Simulation is always safe to
// use: on a validation error it is permanently uninitialized, Step is a
// no-op, and queries return the configured default flow vector, so the
// surrounding visualization keeps rendering something.
func New(w, h int, renderW, renderH float32, p Params) (*Simulation, error) {
	s := &Simulation{
		w: w, h: h,
		renderW: renderW, renderH: renderH,
		p:     p,
		noise: NewFlowNoise(p.NoiseSeed),
		disp:  newDispatcher(),
	}

	if w < 3 || h < 3 {
		return s, fmt.Errorf("fluid: grid %dx%d too small, need at least 3x3", w, h)
	}
	if renderW <= 0 || renderH <= 0 {
		return s, fmt.Errorf("fluid: invalid render domain %.0fx%.0f", renderW, renderH)
	}
	if p.DT <= 0 {
		return s, fmt.Errorf("fluid: non-positive dt %v", p.DT)
	}

	n := w * h
	s.cellSize = renderW / float32(w)
	s.vel = NewVectorField(w, h)
	s.pr = NewScalarField(w, h)
	s.div = make([]float32, n)
	s.vort = make([]float32, n)
	s.absVort = make([]float32, n)
	s.mask = make([]uint8, n)
	s.cacheU = make([]float32, n)
	s.cacheV = make([]float32, n)
	s.cacheP = make([]float32, n)
	s.initialized = true
	return s, nil
}

// Initialized reports whether the solver allocated successfully. When false,
// queries fall back to the default flow vector.
func (s *Simulation) Initialized() bool {
	return s.initialized
}

// GridSize returns the lattice dimensions in cells.
func (s *Simulation) GridSize() (int, int) {
	return s.w, s.h
}

// CellSize returns render pixels per grid cell.
func (s *Simulation) CellSize() float32 {
	return s.cellSize
}

// Clock returns the simulation clock, which only phases the procedural
// disturbance terms.
func (s *Simulation) Clock() float32 {
	return s.clock
}

// Params returns the current parameter set.
func (s *Simulation) Params() Params {
	return s.p
}

// SetParams replaces the live parameter set. Call only between steps. The
// noise seed is fixed at construction and ignored here.
func (s *Simulation) SetParams(p Params) {
	p.NoiseSeed = s.p.NoiseSeed
	s.p = p
}

// PhaseTimer receives pass boundary notifications during Step.
type PhaseTimer interface {
	StartPhase(name string)
}

// SetPhaseTimer installs an optional per-pass timer. Pass nil to disable.
func (s *Simulation) SetPhaseTimer(t PhaseTimer) {
	s.timer = t
}

func (s *Simulation) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Step advances the simulation one frame. The pass ordering is fixed;
// skipping or reordering passes changes simulation semantics. A step is
// atomic: there is no mid-step cancellation.
func (s *Simulation) Step(tick int32) {
	if !s.initialized {
		return
	}
	s.clock += s.p.DT * s.p.ClockRate

	s.phase("forces")
	s.injectForces()
	s.phase("advection")
	s.advect()
	s.phase("diffusion")
	s.diffuse()
	s.phase("boundary")
	s.enforceBoundaries()
	s.phase("projection")
	s.computeDivergence()
	s.solvePressure()
	s.subtractGradient()
	s.phase("boundary")
	s.enforceBoundaries()
	s.phase("vorticity")
	s.computeVorticity()
	s.confineVorticity()

	s.phase("readback")
	if !s.cacheReady || tick-s.lastRefreshTick >= int32(s.p.CacheRefreshTicks) {
		s.refreshCache(tick)
	}
}

// refreshCache mirrors the solver-resident fields into the CPU-visible
// snapshot buffers.
func (s *Simulation) refreshCache(tick int32) {
	s.cacheMu.Lock()
	copy(s.cacheU, s.vel.U)
	copy(s.cacheV, s.vel.V)
	copy(s.cacheP, s.pr.S)
	s.cacheReady = true
	s.lastRefreshTick = tick
	s.cacheMu.Unlock()
}

// QueryVelocity returns the flow velocity at a render-space point in render
// pixels per second, bilinearly interpolated from the cached snapshot.
// Before the first snapshot (or when uninitialized) it returns the default
// flow vector instead of failing.
func (s *Simulation) QueryVelocity(x, y float32) (float32, float32) {
	if !s.initialized {
		return s.p.DefaultFlowX * s.cellSizeOrOne(), s.p.DefaultFlowY * s.cellSizeOrOne()
	}

	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if !s.cacheReady {
		return s.p.DefaultFlowX * s.cellSize, s.p.DefaultFlowY * s.cellSize
	}

	gx := x/s.cellSize - 0.5
	gy := y/s.cellSize - 0.5
	u := sampleBilinear(s.cacheU, s.w, s.h, gx, gy)
	v := sampleBilinear(s.cacheV, s.w, s.h, gx, gy)
	return u * s.cellSize, v * s.cellSize
}

// QueryMaxVelocityMagnitude scans the cached velocity snapshot and returns
// the largest speed in render pixels per second. Used by the visualization
// layer for color normalization.
func (s *Simulation) QueryMaxVelocityMagnitude() float32 {
	if !s.initialized {
		return 0
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if !s.cacheReady {
		return 0
	}

	var maxSq float32
	for i := range s.cacheU {
		sq := s.cacheU[i]*s.cacheU[i] + s.cacheV[i]*s.cacheV[i]
		if sq > maxSq {
			maxSq = sq
		}
	}
	return sqrtf(maxSq) * s.cellSize
}

// QuerySolid reports whether a render-space point lies inside solid
// geometry.
func (s *Simulation) QuerySolid(x, y float32) bool {
	if !s.initialized {
		return false
	}
	gx := int(x / s.cellSize)
	gy := int(y / s.cellSize)
	return s.solid(gx, gy)
}

// MeanAbsDivergence returns the mean absolute divergence of the current
// field, a residual-incompressibility diagnostic. A finite pressure
// iteration budget always leaves some residual.
func (s *Simulation) MeanAbsDivergence() float32 {
	if !s.initialized {
		return 0
	}
	n := len(s.div)
	vec := blas32.Vector{N: n, Inc: 1, Data: s.div}
	return blas32.Asum(vec) / float32(n)
}

// ResidualDivergence recomputes the divergence of the current velocity
// field and returns its mean absolute value. Call between steps.
func (s *Simulation) ResidualDivergence() float32 {
	if !s.initialized {
		return 0
	}
	s.computeDivergence()
	return s.MeanAbsDivergence()
}

// CachedVelocity exposes the CPU snapshot component buffers for read-only
// visualization. The slices are overwritten on the next cache refresh.
func (s *Simulation) CachedVelocity() (u, v []float32) {
	return s.cacheU, s.cacheV
}

// CachedPressure exposes the CPU pressure snapshot for read-only
// visualization.
func (s *Simulation) CachedPressure() []float32 {
	return s.cacheP
}

// Mask exposes the boundary mask (1 = solid) for read-only visualization.
func (s *Simulation) Mask() []uint8 {
	return s.mask
}

// Obstacles returns the obstacle list from the last upload.
func (s *Simulation) Obstacles() []Obstacle {
	return s.obstacles
}

// Close stops the worker pool. The Simulation must not be stepped after
// Close.
func (s *Simulation) Close() {
	s.disp.stop()
}

// cellSizeOrOne avoids scaling by zero when construction failed before the
// cell size was derived.
func (s *Simulation) cellSizeOrOne() float32 {
	if s.cellSize <= 0 {
		return 1
	}
	return s.cellSize
}
