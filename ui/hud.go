package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/herd/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Level     string
	Attempt   int
	Tamed     int
	Wild      int
	Goal      int
	Elapsed   float64
	TimeGoal  float64
	Score     int
	Tick      int32
	TimeScale float64
	FPS       int32
	Paused    bool
	Boosting  bool
	Turn      int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("%s  (attempt %d)", data.Level, data.Attempt), 10, 35, 16, rl.LightGray)

	rescued := rl.LightGray
	if data.Tamed >= data.Goal {
		rescued = ColorTamed
	}
	rl.DrawText(
		fmt.Sprintf("Rescued: %d / %d | Wild: %d | Score: %d", data.Tamed, data.Goal, data.Wild, data.Score),
		10, 55, 16, rescued,
	)

	clock := fmt.Sprintf("Time: %.1fs", data.Elapsed)
	clockColor := rl.LightGray
	if data.TimeGoal > 0 {
		left := data.TimeGoal - data.Elapsed
		if left < 0 {
			left = 0
		}
		clock = fmt.Sprintf("Time left: %.1fs", left)
		if left < 10 {
			clockColor = rl.Orange
		}
	}
	rl.DrawText(clock, 10, 75, 16, clockColor)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %.2gx | FPS: %d", data.Tick, data.TimeScale, data.FPS),
		10, 95, 16, rl.LightGray,
	)

	status := "Cruising"
	if data.Boosting {
		status = "BOOST"
	}
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 115, 16, rl.Yellow)
	h.renderer.DrawCenteredBar(100, 117, "Turn", -float32(data.Turn), -1, 1, 200)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DrawOutcome renders the end-of-attempt banner across the middle of the
// screen.
func (h *HUD) DrawOutcome(screenWidth, screenHeight int32, headline, detail, hint string) {
	const bannerHeight = 110
	y := screenHeight/2 - bannerHeight/2
	rl.DrawRectangle(0, y, screenWidth, bannerHeight, h.renderer.Theme.PanelBg)
	rl.DrawLine(0, y, screenWidth, y, h.renderer.Theme.PanelBorder)
	rl.DrawLine(0, y+bannerHeight, screenWidth, y+bannerHeight, h.renderer.Theme.PanelBorder)

	centered := func(text string, ty, size int32, c rl.Color) {
		w := rl.MeasureText(text, size)
		rl.DrawText(text, screenWidth/2-w/2, ty, size, c)
	}
	centered(headline, y+14, 32, rl.White)
	centered(detail, y+54, 16, rl.LightGray)
	centered(hint, y+80, 14, rl.Gray)
}

// PerfPanel renders the tick phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Avg: %s  Max: %s", stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)),
		x, y, 14, rl.Yellow,
	)
	y += 16

	for _, name := range telemetry.Phases {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %6s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
