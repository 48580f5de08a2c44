package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/inspector"
	"github.com/pthm-cable/herd/systems"
)

// Inspector renders the selected agent's components.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32

	world        *ecs.World
	transformMap *ecs.Map[components.Transform]
	boidMap      *ecs.Map[components.Boid]
	steerMap     *ecs.Map[components.Steering]
	cosmeticMap  *ecs.Map[components.Cosmetic]
	tamedMap     *ecs.Map[components.Tamed]

	selected    ecs.Entity
	hasSelected bool
}

// NewInspector creates a new inspector panel reading from w.
func NewInspector(w *ecs.World, x, y, width int32) *Inspector {
	return &Inspector{
		renderer:     NewRenderer(),
		x:            x,
		y:            y,
		width:        width,
		world:        w,
		transformMap: ecs.NewMap[components.Transform](w),
		boidMap:      ecs.NewMap[components.Boid](w),
		steerMap:     ecs.NewMap[components.Steering](w),
		cosmeticMap:  ecs.NewMap[components.Cosmetic](w),
		tamedMap:     ecs.NewMap[components.Tamed](w),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Pick selects the agent nearest to the world point p within hitRadius.
// A miss clears the selection.
func (ins *Inspector) Pick(p r2.Vec, agents []systems.Agent, hitRadius float64) {
	best := hitRadius * hitRadius
	ins.hasSelected = false
	for _, a := range agents {
		d := r2.Norm2(r2.Sub(a.Pos, p))
		if d <= best {
			best = d
			ins.selected = a.Entity
			ins.hasSelected = true
		}
	}
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected entity if it is still alive.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	if ins.hasSelected && !ins.world.Alive(ins.selected) {
		ins.hasSelected = false
	}
	return ins.selected, ins.hasSelected
}

// Contains reports whether the screen point lies on the open panel.
func (ins *Inspector) Contains(sx, sy float32, height int32) bool {
	if !ins.hasSelected {
		return false
	}
	return sx >= float32(ins.x) && sx <= float32(ins.x+ins.width) &&
		sy >= float32(ins.y) && sy <= float32(ins.y+height)
}

// Draw renders the panel for the selected agent and returns its height. The
// breakdown is the agent's last steering result, if any.
func (ins *Inspector) Draw(breakdown *systems.SteeringResult) int32 {
	e, ok := ins.Selected()
	if !ok {
		return 0
	}

	sections := []inspector.Section{
		inspector.Describe(ins.transformMap.Get(e)),
		inspector.Describe(ins.boidMap.Get(e)),
		inspector.Describe(ins.steerMap.Get(e)),
		inspector.Describe(ins.cosmeticMap.Get(e)),
	}

	r := ins.renderer
	padding := r.Theme.Padding
	height := ins.measure(sections, breakdown)
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + padding
	y := ins.y + padding
	w := ins.width - padding*2

	state := "wild"
	if ins.tamedMap.Has(e) {
		state = "tamed"
	}
	rl.DrawText(fmt.Sprintf("Agent %d (%s)", e.ID(), state), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, sec := range sections {
		y = r.DrawSectionHeader(x, y, sec.Title)
		for _, row := range sec.Rows {
			y = ins.drawRow(x, y, row, w)
		}
		y += 4
	}

	if breakdown != nil {
		y = r.DrawSectionHeader(x, y, "Steering terms")
		f := breakdown.Forces
		y = r.DrawLabelValue(x, y, "Boundary", formatVec(f.Boundary))
		y = r.DrawLabelValue(x, y, "Separation", formatVec(f.Separation))
		y = r.DrawLabelValue(x, y, "Cohesion", formatVec(f.Cohesion))
		y = r.DrawLabelValue(x, y, "Alignment", formatVec(f.Alignment))
	}

	return height
}

func (ins *Inspector) drawRow(x, y int32, row inspector.Row, width int32) int32 {
	r := ins.renderer
	switch row.Widget {
	case inspector.WidgetBar:
		return r.DrawBar(x, y, row.Label, float32(row.Ratio), row.Text, width)
	case inspector.WidgetVec, inspector.WidgetAngle:
		return r.DrawCompass(x, y, row.Label, row.Angle, row.Text)
	case inspector.WidgetBool:
		c := r.Theme.BarBg
		if row.On {
			c = r.Theme.BarFillPositive
		}
		rl.DrawText(row.Label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawRectangle(x+r.Theme.LabelWidth, y+2, 8, 8, c)
		return y + r.Theme.LineHeight
	default:
		return r.DrawLabelValue(x, y, row.Label, row.Text)
	}
}

func (ins *Inspector) measure(sections []inspector.Section, breakdown *systems.SteeringResult) int32 {
	t := ins.renderer.Theme
	h := t.Padding*2 + t.LineHeight + 6
	for _, sec := range sections {
		h += t.LineHeight + 4
		for _, row := range sec.Rows {
			switch row.Widget {
			case inspector.WidgetBar:
				h += t.LineHeight + 2
			case inspector.WidgetVec, inspector.WidgetAngle:
				h += 22
			default:
				h += t.LineHeight
			}
		}
	}
	if breakdown != nil {
		h += t.LineHeight * 5
	}
	return h
}

func formatVec(v r2.Vec) string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}
