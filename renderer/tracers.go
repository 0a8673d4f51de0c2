package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/microflow/particles"
)

// TracerRenderer renders drug-carrier particles with trails.
type TracerRenderer struct {
	width  int32
	height int32
}

// NewTracerRenderer creates a new tracer renderer.
func NewTracerRenderer(width, height int32) *TracerRenderer {
	return &TracerRenderer{
		width:  width,
		height: height,
	}
}

// Draw renders all tracers directly to screen with additive blending.
func (r *TracerRenderer) Draw(views []particles.View, tick int32) {
	rl.BeginBlendMode(rl.BlendAdditive)

	for i := range views {
		p := &views[i]
		tr := &p.Tracer

		// Need at least 1 trail point to draw
		if tr.TrailLen < 1 {
			continue
		}

		// Fade in over first 20% of life (quadratic)
		fadeIn := float32(math.Min(float64(p.LifeRatio)*5, 1))
		fadeIn *= fadeIn

		// Gentle fade out at end
		fadeOut := float32(math.Min(float64(1-p.LifeRatio)*3+0.7, 1))

		// Pulse/shimmer effect
		timeOffset := p.X*0.01 + p.Y*0.01
		pulse := float32(math.Sin(float64(tick)*0.03+float64(timeOffset))*0.5 + 0.5)
		modulation := 0.3 + pulse*0.7

		baseAlpha := tr.Opacity * fadeIn * fadeOut * modulation * 120

		if baseAlpha < 2 {
			continue
		}

		// Current position to first trail point
		trailFade := float32(1.0)
		c := rl.Color{
			R: 120,
			G: 200,
			B: 90,
			A: uint8(baseAlpha * trailFade),
		}
		rl.DrawLineEx(
			rl.Vector2{X: p.X, Y: p.Y},
			rl.Vector2{X: tr.TrailX[0], Y: tr.TrailY[0]},
			tr.Size*2,
			c,
		)

		// Draw rest of trail with decreasing alpha
		for j := uint8(0); j < tr.TrailLen-1; j++ {
			trailFade = 1.0 - float32(j+1)/float32(tr.TrailLen)
			trailFade *= trailFade // Quadratic falloff

			alpha := baseAlpha * trailFade
			if alpha < 1 {
				continue
			}

			c := rl.Color{
				R: 120,
				G: 200,
				B: 90,
				A: uint8(alpha),
			}
			rl.DrawLineEx(
				rl.Vector2{X: tr.TrailX[j], Y: tr.TrailY[j]},
				rl.Vector2{X: tr.TrailX[j+1], Y: tr.TrailY[j+1]},
				tr.Size*2*trailFade,
				c,
			)
		}
	}

	rl.EndBlendMode()
}
