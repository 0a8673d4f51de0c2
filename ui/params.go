package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/microflow/fluid"
)

// ParamsPanel renders slider controls for live solver tuning. Edits are
// returned to the caller, which applies them between solver steps.
type ParamsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewParamsPanel creates a new solver parameter panel.
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (p *ParamsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *ParamsPanel) IsVisible() bool {
	return p.visible
}

// Draw renders the sliders and mutates params with any edits.
// Returns true if a value changed this frame.
func (p *ParamsPanel) Draw(params *fluid.Params) bool {
	if !p.visible {
		return false
	}

	r := p.renderer
	padding := r.Theme.Padding

	sliderW := float32(p.width) - float32(padding)*2 - 50
	rowH := int32(38)
	panelHeight := rowH*7 + padding*2 + 24

	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := float32(p.x + padding)
	y := float32(p.y + padding)

	rl.DrawText("Solver Parameters", int32(x), int32(y), 16, rl.White)
	y += 24

	changed := false

	params.FlowSpeed, changed = p.slider(x, &y, sliderW, "Flow Speed", "%.1f", params.FlowSpeed, 1, 40, changed)
	params.Viscosity, changed = p.slider(x, &y, sliderW, "Viscosity", "%.2f", params.Viscosity, 0, 10, changed)
	params.VorticityStrength, changed = p.slider(x, &y, sliderW, "Vorticity", "%.2f", params.VorticityStrength, 0, 10, changed)
	params.Turbulence, changed = p.slider(x, &y, sliderW, "Turbulence", "%.2f", params.Turbulence, 0, 3, changed)
	params.Dissipation, changed = p.slider(x, &y, sliderW, "Dissipation", "%.3f", params.Dissipation, 0.9, 1, changed)

	iters, itersChanged := p.slider(x, &y, sliderW, "Pressure Iters", "%.0f", float32(params.PressureIters), 5, 100, false)
	if itersChanged && int(iters) != params.PressureIters {
		params.PressureIters = int(iters)
		changed = true
	}

	diff, diffChanged := p.slider(x, &y, sliderW, "Diffusion Iters", "%.0f", float32(params.DiffusionIters), 1, 30, false)
	if diffChanged && int(diff) != params.DiffusionIters {
		params.DiffusionIters = int(diff)
		changed = true
	}

	return changed
}

// slider draws one labeled slider row and advances the layout cursor.
func (p *ParamsPanel) slider(x float32, y *float32, width float32, label, format string, value, minVal, maxVal float32, changed bool) (float32, bool) {
	rl.DrawText(label, int32(x), int32(*y), 12, p.renderer.Theme.LabelColor)
	*y += 14

	newValue := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: width, Height: 16},
		"", "",
		value, minVal, maxVal,
	)
	rl.DrawText(fmt.Sprintf(format, newValue), int32(x+width+6), int32(*y+2), 12, p.renderer.Theme.ValueColor)
	*y += 24

	if newValue != value {
		return newValue, true
	}
	return value, changed
}
