package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/herd/config"
)

// slider binds one config value to a raygui slider.
type slider struct {
	label    string
	min, max float32
	value    func(c *config.Config) *float64
}

var tuningSliders = []slider{
	{"Separation", 0, 30, func(c *config.Config) *float64 { return &c.Boids.Separation }},
	{"Cohesion", 0, 10, func(c *config.Config) *float64 { return &c.Boids.Cohesion }},
	{"Alignment", 0, 10, func(c *config.Config) *float64 { return &c.Boids.Alignment }},
	{"Boundary", 0, 20, func(c *config.Config) *float64 { return &c.Boids.Boundary }},
	{"Min speed", 0, 2000, func(c *config.Config) *float64 { return &c.Boids.MinSpeed }},
	{"Max speed", 0, 2000, func(c *config.Config) *float64 { return &c.Boids.MaxSpeed }},
	{"Wild speed", 0, 2000, func(c *config.Config) *float64 { return &c.Boids.WildSpeed }},
	{"Min turn", 0, 30, func(c *config.Config) *float64 { return &c.Boids.MinTurnSpeed }},
	{"Max turn", 0, 30, func(c *config.Config) *float64 { return &c.Boids.MaxTurnSpeed }},
	{"Wild turn", 0, 30, func(c *config.Config) *float64 { return &c.Boids.WildTurnSpeed }},
	{"Safe turn", 0, 40, func(c *config.Config) *float64 { return &c.Boids.SafeTurnSpeed }},
	{"Influence", 0, 50, func(c *config.Config) *float64 { return &c.Boids.PlayerInfluence }},
	{"Probe angle", 0, 90, func(c *config.Config) *float64 { return &c.Boids.LeftProbeDeg }},
}

// TuningPanel edits the live config with sliders. Changes apply from the
// next tick.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	defaults config.Config
}

// NewTuningPanel creates a hidden tuning panel. Reset restores the values
// the config held at creation.
func NewTuningPanel(x, y, width int32, cfg *config.Config) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		defaults: cfg.Snapshot(),
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Toggle switches panel visibility.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *TuningPanel) IsVisible() bool {
	return t.visible
}

// Height returns the panel height in pixels.
func (t *TuningPanel) Height() int32 {
	return int32(len(tuningSliders))*30 + 110
}

// Draw renders the sliders and applies edits to cfg. It reports whether
// anything changed.
func (t *TuningPanel) Draw(cfg *config.Config) bool {
	if !t.visible {
		return false
	}

	r := t.renderer
	padding := r.Theme.Padding
	r.DrawPanel(t.x, t.y, t.width, t.Height())

	x := float32(t.x + padding)
	y := float32(t.y + padding)
	rl.DrawText("Tuning", int32(x), int32(y), 16, rl.White)
	y += 24

	labelW := float32(r.Theme.LabelWidth)
	sliderW := float32(t.width-padding*2) - labelW - 50
	changed := false

	for _, s := range tuningSliders {
		v := s.value(cfg)
		rl.DrawText(s.label, int32(x), int32(y+4), r.Theme.FontSize, r.Theme.LabelColor)
		nv := gui.SliderBar(
			rl.Rectangle{X: x + labelW, Y: y, Width: sliderW, Height: 20},
			"", "",
			float32(*v), s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf("%.1f", *v), int32(x+labelW+sliderW+6), int32(y+4), r.Theme.FontSize, r.Theme.ValueColor)
		if nv != float32(*v) {
			*v = float64(nv)
			changed = true
		}
		y += 30
	}

	// Probe angles stay mirrored.
	if changed {
		cfg.Boids.RightProbeDeg = -cfg.Boids.LeftProbeDeg
	}

	y += 6
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 110, Height: 26}, toggleText(cfg.Boids.Wander, "Wander: on", "Wander: off")) {
		cfg.Boids.Wander = !cfg.Boids.Wander
		changed = true
	}
	reflect := cfg.Physics.Collision == config.CollisionReflect
	if gui.Button(rl.Rectangle{X: x + 120, Y: y, Width: 110, Height: 26}, toggleText(reflect, "Walls: reflect", "Walls: freeze")) {
		if reflect {
			cfg.Physics.Collision = config.CollisionFreeze
		} else {
			cfg.Physics.Collision = config.CollisionReflect
		}
		changed = true
	}
	y += 34
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 110, Height: 26}, "Reset") {
		restore(cfg, t.defaults)
		changed = true
	}

	if changed {
		cfg.Refresh()
	}
	return changed
}

// restore copies the tunable sections of from into cfg, leaving screen,
// telemetry and game settings alone.
func restore(cfg *config.Config, from config.Config) {
	cfg.Boids = from.Boids
	cfg.Physics.Collision = from.Physics.Collision
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
