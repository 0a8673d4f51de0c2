package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/microflow/config"
	"github.com/pthm-cable/microflow/fluid"
)

// Stall detection: a run whose peak cached speed stays below this fraction of
// the inflow target is considered numerically dead and pays a fixed penalty.
const (
	stallSpeedFraction = 0.25
	stallPenalty       = 10.0
	warmupSec          = 2.0 // skip initial spin-up before sampling residuals
)

// FitnessEvaluator runs headless solver instances and scores parameter sets.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	// Most recent evaluation summary, for progress output
	mu            sync.Mutex
	lastResidual  float64
	lastMeanSpeed float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastResidual returns the mean residual divergence from the most recent evaluation.
func (fe *FitnessEvaluator) LastResidual() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResidual
}

// LastMeanSpeed returns the mean peak speed from the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanSpeed() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanSpeed
}

// seedResult holds the outcome of one seed run.
type seedResult struct {
	fitness  float64
	residual float64
	speed    float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Each seed runs an independent channel scenario; the score is the mean
// post-projection residual divergence, penalized when the flow stalls.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalResidual, totalSpeed float64
	for _, r := range results {
		totalFitness += r.fitness
		totalResidual += r.residual
		totalSpeed += r.speed
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastResidual = totalResidual / n
	fe.lastMeanSpeed = totalSpeed / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless solver run for one obstacle seed.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) seedResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	p := fluid.ParamsFromConfig(cfg)
	sim, err := fluid.New(cfg.Derived.GridW, cfg.Derived.GridH,
		cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, p)
	if err != nil {
		return seedResult{fitness: math.Inf(1)}
	}
	defer sim.Close()

	sim.UploadObstacles(generateObstacles(cfg, seed, sim.CellSize()), cfg.Grid.WallThickness)

	warmupTicks := int32(warmupSec / cfg.Fluid.DT)
	var residualSum, peakSpeed float64
	var samples int

	for tick := int32(0); tick < fe.maxTicks; tick++ {
		sim.Step(tick)
		if tick < warmupTicks {
			continue
		}
		residualSum += float64(sim.ResidualDivergence())
		samples++
		if s := float64(sim.QueryMaxVelocityMagnitude()); s > peakSpeed {
			peakSpeed = s
		}
	}

	if samples == 0 {
		return seedResult{fitness: math.Inf(1)}
	}

	residual := residualSum / float64(samples)
	fitness := residual

	// Peak speed is in render px/s; the stall threshold is in the same units.
	stallSpeed := cfg.Fluid.FlowSpeed * float64(sim.CellSize()) * stallSpeedFraction
	if peakSpeed < stallSpeed {
		fitness += stallPenalty
	}

	return seedResult{fitness: fitness, residual: residual, speed: peakSpeed}
}

// copyConfig clones the base config. Config holds only value fields, so a
// shallow copy is a full copy.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	clone := *fe.baseConfig
	return &clone
}

// generateObstacles builds the same seeded pillar scenario the interactive
// app uses, so tuned parameters transfer to it directly.
func generateObstacles(cfg *config.Config, seed int64, cellSize float32) []fluid.Obstacle {
	oc := cfg.Obstacles
	if oc.Count <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	width := cfg.Derived.ScreenW32
	height := cfg.Derived.ScreenH32
	wallPx := float32(cfg.Grid.WallThickness) * cellSize

	obstacles := make([]fluid.Obstacle, 0, oc.Count)
	for i := 0; i < oc.Count; i++ {
		r := float32(oc.MinRadius) + rng.Float32()*float32(oc.MaxRadius-oc.MinRadius)
		x := width*0.2 + rng.Float32()*width*0.6
		yMin := wallPx + r
		yMax := height - wallPx - r
		if yMax <= yMin {
			continue
		}
		y := yMin + rng.Float32()*(yMax-yMin)
		obstacles = append(obstacles, fluid.Obstacle{X: x, Y: y, R: r})
	}
	return obstacles
}
