// Package particles drives the drug-carrier tracer particles that ride the
// solved flow field. Particles are pure visualization passengers: they
// consume the solver's velocity query interface and never feed back into it.
package particles

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/microflow/config"
)

// trailLen is the number of historical positions kept per particle.
const trailLen = 8

// FlowSampler provides flow velocity and solid lookups at render-space
// positions. Implemented by fluid.Simulation.
type FlowSampler interface {
	QueryVelocity(x, y float32) (vx, vy float32)
	QuerySolid(x, y float32) bool
}

// Position is a particle's render-space position.
type Position struct {
	X, Y float32
}

// Velocity is a particle's velocity in render pixels per tick.
type Velocity struct {
	X, Y float32
}

// Tracer holds a particle's lifetime and visual state.
type Tracer struct {
	Lifespan    int32
	MaxLifespan int32
	Opacity     float32
	Size        float32

	// Trail history, most recent first
	TrailX   [trailLen]float32
	TrailY   [trailLen]float32
	TrailLen uint8
}

// View is a read-only particle snapshot handed to the renderer.
type View struct {
	X, Y      float32
	Tracer    Tracer
	LifeRatio float32
}

// System owns the tracer particle population.
type System struct {
	world  *ecs.World
	mapper *ecs.Map3[Position, Velocity, Tracer]
	filter *ecs.Filter3[Position, Velocity, Tracer]

	flow FlowSampler
	rng  *rand.Rand

	width, height float32
	targetCount   int
	spawnRate     int
	minLifespan   int32
	maxLifespan   int32
	drag          float32
	maxSpeed      float32

	views   []View
	removed []ecs.Entity
	count   int
}

// NewSystem creates a particle system over the given render-space bounds.
func NewSystem(width, height float32, flow FlowSampler, seed int64, cfg *config.Config) *System {
	world := ecs.NewWorld()
	pc := cfg.Particles
	return &System{
		world:       world,
		mapper:      ecs.NewMap3[Position, Velocity, Tracer](world),
		filter:      ecs.NewFilter3[Position, Velocity, Tracer](world),
		flow:        flow,
		rng:         rand.New(rand.NewSource(seed)),
		width:       width,
		height:      height,
		targetCount: pc.TargetCount,
		spawnRate:   pc.SpawnRate,
		minLifespan: int32(pc.MinLifespan),
		maxLifespan: int32(pc.MaxLifespan),
		drag:        float32(pc.Drag),
		maxSpeed:    float32(pc.MaxSpeed),
	}
}

// Count returns the live particle count.
func (s *System) Count() int {
	return s.count
}

// Update advances all particles one tick: spawn at the inlet up to the
// target population, accelerate along the sampled flow, expire by lifespan,
// and recycle particles that leave the channel or get caught inside newly
// uploaded obstacle geometry.
func (s *System) Update() {
	if s.count < s.targetCount {
		for i := 0; i < s.spawnRate && s.count < s.targetCount; i++ {
			s.spawn()
		}
	}

	dt := float32(1.0 / 60.0)
	s.removed = s.removed[:0]

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, tr := query.Get()

		tr.Lifespan--
		if tr.Lifespan <= 0 || pos.X > s.width {
			s.removed = append(s.removed, entity)
			continue
		}

		// Shift trail history
		for j := trailLen - 1; j > 0; j-- {
			tr.TrailX[j] = tr.TrailX[j-1]
			tr.TrailY[j] = tr.TrailY[j-1]
		}
		tr.TrailX[0] = pos.X
		tr.TrailY[0] = pos.Y
		if tr.TrailLen < trailLen {
			tr.TrailLen++
		}

		// Accelerate toward the sampled flow velocity
		fx, fy := s.flow.QueryVelocity(pos.X, pos.Y)
		vel.X += (fx*dt - vel.X) * 0.25
		vel.Y += (fy*dt - vel.Y) * 0.25

		vel.X *= s.drag
		vel.Y *= s.drag

		// Speed clamp, skipping the sqrt when clearly under the limit
		velSq := vel.X*vel.X + vel.Y*vel.Y
		if velSq > s.maxSpeed*s.maxSpeed {
			scale := s.maxSpeed / sqrt32(velSq)
			vel.X *= scale
			vel.Y *= scale
		}

		pos.X += vel.X
		pos.Y += vel.Y

		// Obstacle contact: move back and damp instead of tunneling
		if s.flow.QuerySolid(pos.X, pos.Y) {
			pos.X -= vel.X
			pos.Y -= vel.Y
			vel.X *= -0.5
			vel.Y *= -0.5
			tr.TrailLen = 0
		}

		if pos.Y < 0 || pos.Y > s.height || pos.X < -s.width*0.02 {
			s.removed = append(s.removed, entity)
		}
	}

	for _, entity := range s.removed {
		s.mapper.Remove(entity)
		s.count--
	}
}

// spawn creates one particle near the inlet at a random open position.
func (s *System) spawn() {
	x := s.rng.Float32() * s.width * 0.05
	y := s.rng.Float32() * s.height
	if s.flow.QuerySolid(x, y) {
		return
	}

	life := s.minLifespan
	if s.maxLifespan > s.minLifespan {
		life += s.rng.Int31n(s.maxLifespan - s.minLifespan)
	}
	pos := Position{X: x, Y: y}
	vel := Velocity{}
	tr := Tracer{
		Lifespan:    life,
		MaxLifespan: life,
		Opacity:     0.15 + s.rng.Float32()*0.15,
		Size:        0.5 + s.rng.Float32()*0.4,
	}
	s.mapper.NewEntity(&pos, &vel, &tr)
	s.count++
}

// Views fills and returns the reusable snapshot slice for rendering.
func (s *System) Views() []View {
	s.views = s.views[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, _, tr := query.Get()
		s.views = append(s.views, View{
			X: pos.X, Y: pos.Y,
			Tracer:    *tr,
			LifeRatio: float32(tr.Lifespan) / float32(tr.MaxLifespan),
		})
	}
	return s.views
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
