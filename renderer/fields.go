// Package renderer draws the solver's fields and tracer particles.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/microflow/fluid"
)

// FieldRenderer draws grid-resolution field overlays through a texture that
// is refreshed from the solver's CPU snapshot.
type FieldRenderer struct {
	gridW, gridH int
	screenW      float32
	screenH      float32
	cellSize     float32
	texture      rl.Texture2D
	pixels       []color.RGBA
	arrowStride  int
	arrowScale   float32
}

// NewFieldRenderer creates a field renderer for a gridW x gridH solver grid
// drawn over a screenW x screenH window.
func NewFieldRenderer(gridW, gridH int, screenW, screenH float32) *FieldRenderer {
	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(texture, rl.FilterBilinear)

	return &FieldRenderer{
		gridW:       gridW,
		gridH:       gridH,
		screenW:     screenW,
		screenH:     screenH,
		cellSize:    screenW / float32(gridW),
		texture:     texture,
		pixels:      make([]color.RGBA, gridW*gridH),
		arrowStride: 8,
		arrowScale:  0.35,
	}
}

// UpdatePressure refreshes the texture with a diverging pressure colormap.
// Blue for negative, red for positive, solids drawn dark.
func (fr *FieldRenderer) UpdatePressure(pressure []float32, mask []uint8) {
	// Normalize against the window's largest magnitude
	var maxAbs float32 = 1e-6
	for _, p := range pressure {
		a := p
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}

	for i, p := range pressure {
		if mask[i] != 0 {
			fr.pixels[i] = color.RGBA{R: 30, G: 30, B: 38, A: 255}
			continue
		}
		t := p / maxAbs
		if t > 1 {
			t = 1
		} else if t < -1 {
			t = -1
		}
		if t >= 0 {
			// white -> red
			fr.pixels[i] = color.RGBA{
				R: 255,
				G: uint8(255 * (1 - t)),
				B: uint8(255 * (1 - t)),
				A: 180,
			}
		} else {
			// white -> blue
			fr.pixels[i] = color.RGBA{
				R: uint8(255 * (1 + t)),
				G: uint8(255 * (1 + t)),
				B: 255,
				A: 180,
			}
		}
	}

	rl.UpdateTexture(fr.texture, fr.pixels)
}

// UpdateSpeed refreshes the texture with a speed heatmap,
// dark blue through cyan to white at maxSpeed.
func (fr *FieldRenderer) UpdateSpeed(u, v []float32, mask []uint8, maxSpeed float32) {
	if maxSpeed <= 0 {
		maxSpeed = 1
	}
	for i := range u {
		if mask[i] != 0 {
			fr.pixels[i] = color.RGBA{R: 30, G: 30, B: 38, A: 255}
			continue
		}
		speed := fluid.Hypot(u[i], v[i])
		t := speed / maxSpeed
		if t > 1 {
			t = 1
		}
		if t < 0.5 {
			s := t * 2
			fr.pixels[i] = color.RGBA{
				R: 0,
				G: uint8(180 * s),
				B: uint8(60 + 195*s),
				A: 170,
			}
		} else {
			s := (t - 0.5) * 2
			fr.pixels[i] = color.RGBA{
				R: uint8(255 * s),
				G: uint8(180 + 75*s),
				B: 255,
				A: 170,
			}
		}
	}

	rl.UpdateTexture(fr.texture, fr.pixels)
}

// DrawField draws the current field texture stretched over the window.
func (fr *FieldRenderer) DrawField() {
	rl.DrawTexturePro(
		fr.texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(fr.gridW), Height: float32(fr.gridH)},
		rl.Rectangle{X: 0, Y: 0, Width: fr.screenW, Height: fr.screenH},
		rl.Vector2{},
		0,
		rl.White,
	)
}

// DrawVelocityArrows draws a sparse arrow overlay from the velocity snapshot.
// Velocities are in cells/sec; arrow length is scaled down so the fastest
// arrows stay readable.
func (fr *FieldRenderer) DrawVelocityArrows(u, v []float32, mask []uint8) {
	stride := fr.arrowStride
	arrowColor := rl.Color{R: 220, G: 230, B: 240, A: 160}

	for y := stride / 2; y < fr.gridH; y += stride {
		for x := stride / 2; x < fr.gridW; x += stride {
			i := y*fr.gridW + x
			if mask[i] != 0 {
				continue
			}
			vx := u[i] * fr.arrowScale
			vy := v[i] * fr.arrowScale

			sx := (float32(x) + 0.5) * fr.cellSize
			sy := (float32(y) + 0.5) * fr.cellSize
			ex := sx + vx
			ey := sy + vy

			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 1, arrowColor)
			rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, 1.5, arrowColor)
		}
	}
}

// DrawObstacles draws the channel walls and obstacle discs.
func (fr *FieldRenderer) DrawObstacles(obstacles []fluid.Obstacle, wallThickness int) {
	wallColor := rl.Color{R: 60, G: 62, B: 72, A: 255}
	discColor := rl.Color{R: 80, G: 84, B: 96, A: 255}
	rimColor := rl.Color{R: 130, G: 136, B: 150, A: 255}

	wallPx := float32(wallThickness) * fr.cellSize
	rl.DrawRectangleRec(rl.Rectangle{X: 0, Y: 0, Width: fr.screenW, Height: wallPx}, wallColor)
	rl.DrawRectangleRec(rl.Rectangle{X: 0, Y: fr.screenH - wallPx, Width: fr.screenW, Height: wallPx}, wallColor)

	for _, ob := range obstacles {
		if ob.R <= 0 {
			continue
		}
		rl.DrawCircleV(rl.Vector2{X: ob.X, Y: ob.Y}, ob.R, discColor)
		rl.DrawCircleLinesV(rl.Vector2{X: ob.X, Y: ob.Y}, ob.R, rimColor)
	}
}

// Unload releases GPU resources.
func (fr *FieldRenderer) Unload() {
	rl.UnloadTexture(fr.texture)
}
