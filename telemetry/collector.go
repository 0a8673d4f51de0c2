package telemetry

// FieldSample holds the solver field readings taken at window end.
type FieldSample struct {
	MeanAbsDivergence float64
	Speeds            []float64 // per-cell speeds over fluid cells, cells/sec
	Pressures         []float64 // per-cell pressures over fluid cells
	ObstacleCount     int
	SolidCells        int
	ParticleCount     int
}

// Collector groups solver samples into time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the given field sample and starts the
// next window.
func (c *Collector) Flush(currentTick int32, sample FieldSample) WindowStats {
	speedMean, speedStd, _, speedP50, speedP90 := ComputeFieldStats(sample.Speeds)
	pressureMean, _, pressureP10, _, pressureP90 := ComputeFieldStats(sample.Pressures)

	var speedMax float64
	for _, s := range sample.Speeds {
		if s > speedMax {
			speedMax = s
		}
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		MeanAbsDivergence: sample.MeanAbsDivergence,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,
		SpeedMax:  speedMax,

		PressureMean: pressureMean,
		PressureP10:  pressureP10,
		PressureP90:  pressureP90,

		ObstacleCount: sample.ObstacleCount,
		SolidCells:    sample.SolidCells,
		ParticleCount: sample.ParticleCount,
	}

	c.windowStartTick = currentTick

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
