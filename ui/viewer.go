package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/camera"
	"github.com/pthm-cable/herd/components"
	"github.com/pthm-cable/herd/game"
	"github.com/pthm-cable/herd/systems"
	"github.com/pthm-cable/herd/telemetry"
)

const (
	fieldCellPx     = 8
	agentLength     = 22.0 // World units, tip to tail
	minAgentPx      = 5
	pickRadiusPx    = 14
	forceLengthPx   = 40
	flashSeconds    = 0.6
	maxStepsPerDraw = 8
	minTimeScale    = 0.125
	maxTimeScale    = 8
)

const controlsLegend = "A/D turn | Space boost | P pause | . step | [ ] speed | Tab overlays | T tuning | F3 perf | Enter continue | R retry"

// flash marks a world point briefly after an event.
type flash struct {
	pos   r2.Vec
	ttl   float64
	color rl.Color
}

// Viewer runs a game in a raylib window: it turns keyboard input into player
// commands, steps the simulation at a fixed rate and draws the world with its
// debug overlays.
type Viewer struct {
	game *game.Game
	cam  *camera.Camera

	field     *FieldLayer
	overlays  *OverlayRegistry
	controls  *ControlsPanel
	tuning    *TuningPanel
	flock     *FlockStatsPanel
	perf      *PerfPanel
	hud       *HUD
	inspector *Inspector

	drawFilter *ecs.Filter3[components.Transform, components.Boid, components.Cosmetic]

	screenW, screenH int32
	paused           bool
	stepOnce         bool
	showPerf         bool
	timeScale        float64
	stepsPerUpdate   int
	accumulator      float64
	gameComplete     bool
	lastStats        telemetry.WindowStats
	flashes          []flash
}

// NewViewer creates the game described by opts and the viewer around it. The
// raylib window must already be open.
func NewViewer(opts game.Options, stepsPerUpdate int) (*Viewer, error) {
	v := &Viewer{
		screenW:        int32(rl.GetScreenWidth()),
		screenH:        int32(rl.GetScreenHeight()),
		stepsPerUpdate: max(stepsPerUpdate, 1),
	}

	userCallback := opts.StatsCallback
	opts.StatsCallback = func(s telemetry.WindowStats) {
		v.lastStats = s
		if userCallback != nil {
			userCallback(s)
		}
	}

	g, err := game.NewGame(opts)
	if err != nil {
		return nil, err
	}
	v.game = g

	cfg := g.Config()
	v.timeScale = cfg.Game.TimeScale
	if v.timeScale <= 0 {
		v.timeScale = 1
	}

	v.cam = camera.New(float64(v.screenW), float64(v.screenH), cfg.Camera)
	pos, _, _ := g.PlayerState()
	v.cam.SnapTo(pos)

	v.field = NewFieldLayer(v.screenW, v.screenH, fieldCellPx)
	v.overlays = NewOverlayRegistry()
	v.overlays.SetEnabled(OverlayFinish, true)
	v.overlays.SetEnabled(OverlayCollisions, true)
	v.controls = NewControlsPanel(10, 150, 220)
	v.tuning = NewTuningPanel(240, 150, 340, cfg)
	v.flock = NewFlockStatsPanel(10, v.screenH-170, 240)
	v.perf = NewPerfPanel(v.screenW-260, v.screenH-150)
	v.hud = NewHUD()
	v.inspector = NewInspector(g.World(), v.screenW-290, 10, 280)
	v.drawFilter = ecs.NewFilter3[components.Transform, components.Boid, components.Cosmetic](g.World())

	return v, nil
}

// Game returns the running game.
func (v *Viewer) Game() *game.Game { return v.game }

// Run drives the window until it closes or maxTicks is reached (0 = no limit).
func (v *Viewer) Run(maxTicks int) {
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && int(v.game.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", v.game.Tick())
			return
		}
	}
}

// Unload releases GPU resources and output files.
func (v *Viewer) Unload() error {
	v.field.Unload()
	return v.game.Unload()
}

// Update handles input and advances the simulation by one frame's worth of
// ticks.
func (v *Viewer) Update() {
	frameDt := float64(rl.GetFrameTime())
	v.game.RecordFrame()

	if rl.IsWindowResized() {
		v.resize(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	}

	v.handleKeys()
	v.handleMouse()

	dt := v.game.Config().Physics.DT
	outcome, _ := v.game.Outcome()
	switch {
	case outcome != game.Running:
		v.accumulator = 0
	case v.paused:
		if v.stepOnce {
			v.game.Step(dt)
			v.stepOnce = false
		}
	default:
		v.accumulator += frameDt * v.timeScale * float64(v.stepsPerUpdate)
		steps := 0
		for v.accumulator >= dt && steps < maxStepsPerDraw*v.stepsPerUpdate {
			v.game.Step(dt)
			v.accumulator -= dt
			steps++
		}
		if steps == maxStepsPerDraw*v.stepsPerUpdate {
			v.accumulator = 0
		}
	}

	v.consumeEvents()
	v.ageFlashes(frameDt)

	pos, heading, speed := v.game.PlayerState()
	v.cam.Follow(pos, heading, speed, frameDt)
}

func (v *Viewer) handleKeys() {
	g := v.game

	turn := 0
	if rl.IsKeyDown(rl.KeyA) || rl.IsKeyDown(rl.KeyLeft) {
		turn++
	}
	if rl.IsKeyDown(rl.KeyD) || rl.IsKeyDown(rl.KeyRight) {
		turn--
	}
	g.SetTurn(turn)

	if rl.IsKeyPressed(rl.KeySpace) {
		g.ToggleBoost()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.paused {
		v.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		v.timeScale = math.Max(v.timeScale/2, minTimeScale)
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		v.timeScale = math.Min(v.timeScale*2, maxTimeScale)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		v.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		v.inspector.Deselect()
	}

	if key := rl.GetKeyPressed(); key != 0 {
		if id, on, ok := v.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}

	if rl.IsKeyPressed(rl.KeyR) {
		v.retry()
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		v.advance()
	}
}

func (v *Viewer) handleMouse() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + 0.1*float64(wheel))
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.inspector.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mouse := rl.GetMousePosition()
	if v.overPanel(mouse.X, mouse.Y) {
		return
	}
	agents, _ := v.game.Agents()
	p := v.cam.ScreenToWorld(mouse.X, mouse.Y)
	v.inspector.Pick(p, agents, pickRadiusPx/v.cam.Zoom)
}

// overPanel reports whether a click lands on a panel that owns the mouse.
func (v *Viewer) overPanel(sx, sy float32) bool {
	in := func(x, y, w, h int32) bool {
		return sx >= float32(x) && sx <= float32(x+w) && sy >= float32(y) && sy <= float32(y+h)
	}
	if v.tuning.IsVisible() && in(240, 150, 340, v.tuning.Height()) {
		return true
	}
	return v.inspector.Contains(sx, sy, 480)
}

func (v *Viewer) retry() {
	if err := v.game.Retry(); err != nil {
		slog.Error("retry failed", "error", err)
		return
	}
	v.resetView()
}

// advance continues after an attempt ends: the next level after a win, the
// same level after a loss, the start level after the last one.
func (v *Viewer) advance() {
	g := v.game
	outcome, _ := g.Outcome()
	if outcome == game.Running {
		return
	}

	var err error
	switch {
	case v.gameComplete:
		v.gameComplete = false
		err = g.LoadLevel(g.Config().Game.StartLevel)
	case outcome == game.LevelComplete:
		err = g.Advance()
		if errors.Is(err, game.ErrGameComplete) {
			v.gameComplete = true
			slog.Info("game complete", "score", g.Score())
			return
		}
	default:
		err = g.Retry()
	}
	if err != nil {
		slog.Error("failed to continue", "error", err)
		return
	}
	v.resetView()
}

func (v *Viewer) resetView() {
	pos, _, _ := v.game.PlayerState()
	v.cam.SnapTo(pos)
	v.inspector.Deselect()
	v.flashes = v.flashes[:0]
	v.accumulator = 0
	v.lastStats = telemetry.WindowStats{}
}

func (v *Viewer) resize(w, h int32) {
	v.screenW, v.screenH = w, h
	v.cam.Resize(float64(w), float64(h))
	v.field.Resize(w, h)
	v.flock.SetPosition(10, h-170)
	v.perf.SetPosition(w-260, h-150)
	v.inspector.SetPosition(w-290, 10)
}

// consumeEvents turns game events into short-lived markers.
func (v *Viewer) consumeEvents() {
	events := v.game.DrainEvents()
	if len(events) == 0 {
		return
	}

	// Events refer to agents that may already be gone, so positions come from
	// the last steering snapshot.
	agents, _ := v.game.Agents()
	where := make(map[ecs.Entity]r2.Vec, len(agents))
	for _, a := range agents {
		where[a.Entity] = a.Pos
	}

	for _, ev := range events {
		pos, ok := where[ev.Entity]
		if !ok {
			continue
		}
		switch ev.Kind {
		case game.EventCollided:
			v.flashes = append(v.flashes, flash{pos: pos, ttl: flashSeconds, color: ColorCollided})
		case game.EventTamed:
			v.flashes = append(v.flashes, flash{pos: pos, ttl: flashSeconds, color: ColorTamed})
		}
	}
}

func (v *Viewer) ageFlashes(dt float64) {
	kept := v.flashes[:0]
	for _, f := range v.flashes {
		f.ttl -= dt
		if f.ttl > 0 {
			kept = append(kept, f)
		}
	}
	v.flashes = kept
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	g := v.game

	rl.BeginDrawing()
	rl.ClearBackground(ColorWall)

	v.field.Update(v.cam, g.Level(), v.overlays.IsEnabled(OverlayField), v.overlays.IsEnabled(OverlayFinish))
	v.field.Draw()

	v.drawOverlaysBelow()
	v.drawAgents()
	v.drawOverlaysAbove()

	v.drawHUD()

	rl.EndDrawing()
}

func (v *Viewer) drawAgents() {
	lengthPx := math.Max(float64(v.cam.WorldLength(agentLength)), minAgentPx)
	length := lengthPx / v.cam.Zoom

	query := v.drawFilter.Query()
	for query.Next() {
		tr, boid, cosmetic := query.Get()
		if !v.cam.IsVisible(tr.Pos, length) {
			continue
		}

		color := ColorWild
		switch cosmetic.Mode {
		case components.CosmeticTamed:
			color = ColorTamed
		case components.CosmeticPlayer:
			color = ColorPlayer
		}
		v.drawTriangle(tr.Pos, boid.Heading, length, color)
	}

	if e, ok := v.inspector.Selected(); ok {
		agents, _ := v.game.Agents()
		for _, a := range agents {
			if a.Entity == e {
				x, y := v.cam.WorldToScreen(a.Pos)
				rl.DrawCircleLines(int32(x), int32(y), float32(lengthPx), rl.Yellow)
				break
			}
		}
	}
}

// drawTriangle draws an agent as an isosceles triangle pointing along
// heading.
func (v *Viewer) drawTriangle(pos, heading r2.Vec, length float64, color rl.Color) {
	perp := r2.Vec{X: -heading.Y, Y: heading.X}
	tip := r2.Add(pos, r2.Scale(length*0.6, heading))
	back := r2.Sub(pos, r2.Scale(length*0.4, heading))
	left := r2.Add(back, r2.Scale(length*0.3, perp))
	right := r2.Sub(back, r2.Scale(length*0.3, perp))

	// The camera flips y, which turns the world's counter-clockwise order into
	// the winding raylib expects.
	rl.DrawTriangle(v.screen(tip), v.screen(left), v.screen(right), color)
}

func (v *Viewer) screen(p r2.Vec) rl.Vector2 {
	x, y := v.cam.WorldToScreen(p)
	return rl.Vector2{X: x, Y: y}
}

// drawOverlaysBelow draws radius overlays under the agents.
func (v *Viewer) drawOverlaysBelow() {
	vision := v.overlays.IsEnabled(OverlayVision)
	space := v.overlays.IsEnabled(OverlayPersonalSpace)
	if !vision && !space {
		return
	}

	agents, _ := v.game.Agents()
	for _, a := range agents {
		if !v.cam.IsVisible(a.Pos, a.Vision) {
			continue
		}
		x, y := v.cam.WorldToScreen(a.Pos)
		if vision {
			c := rl.Color{R: 200, G: 200, B: 200, A: 40}
			if a.Player {
				c = rl.Color{R: ColorPlayer.R, G: ColorPlayer.G, B: ColorPlayer.B, A: 120}
			}
			rl.DrawCircleLines(int32(x), int32(y), v.cam.WorldLength(a.Vision), c)
		}
		if space {
			rl.DrawCircleLines(int32(x), int32(y), v.cam.WorldLength(a.PersonalSpace), rl.Color{R: 230, G: 120, B: 120, A: 60})
		}
	}
}

// drawOverlaysAbove draws vector and event overlays over the agents.
func (v *Viewer) drawOverlaysAbove() {
	agents, results := v.game.Agents()
	cfg := v.game.TickConfig()
	field := v.game.Level().Walls

	if v.overlays.IsEnabled(OverlayProbes) {
		for _, a := range agents {
			if !v.cam.IsVisible(a.Pos, a.Vision) {
				continue
			}
			probes := systems.ProbePoints(a.Pos, a.Heading, a.Vision, cfg)
			from := v.screen(a.Pos)
			for _, p := range []r2.Vec{probes.Forward, probes.Left, probes.Right} {
				c := rl.Color{R: 120, G: 160, B: 220, A: 90}
				if field.DistanceToEdge(p) <= 0 {
					c = rl.Color{R: 230, G: 90, B: 90, A: 200}
				}
				rl.DrawLineV(from, v.screen(p), c)
			}
		}
	}

	if v.overlays.IsEnabled(OverlayForces) {
		for i, a := range agents {
			if i >= len(results) || !v.cam.IsVisible(a.Pos, 0) {
				continue
			}
			v.drawVector(a.Pos, results[i].Force, rl.White)
		}
	}

	if v.overlays.IsEnabled(OverlayBreakdown) {
		b := &cfg.Boids
		for i, a := range agents {
			if i >= len(results) || !v.cam.IsVisible(a.Pos, 0) {
				continue
			}
			f := results[i].Forces
			v.drawVector(a.Pos, r2.Scale(b.Boundary, f.Boundary), rl.Red)
			v.drawVector(a.Pos, r2.Scale(b.Separation, f.Separation), rl.Orange)
			v.drawVector(a.Pos, r2.Scale(b.Cohesion, f.Cohesion), rl.Green)
			v.drawVector(a.Pos, r2.Scale(b.Alignment, f.Alignment), rl.SkyBlue)
		}
	}

	if v.overlays.IsEnabled(OverlayCollisions) {
		for _, f := range v.flashes {
			s := v.screen(f.pos)
			c := f.color
			c.A = uint8(255 * f.ttl / flashSeconds)
			radius := float32(8 + 20*(1-f.ttl/flashSeconds))
			rl.DrawCircleLines(int32(s.X), int32(s.Y), radius, c)
		}
	}
}

// drawVector draws a force as a screen-space line. Unit length maps to
// forceLengthPx.
func (v *Viewer) drawVector(from, vec r2.Vec, color rl.Color) {
	start := v.screen(from)
	end := rl.Vector2{
		X: start.X + float32(vec.X*forceLengthPx),
		Y: start.Y - float32(vec.Y*forceLengthPx),
	}
	rl.DrawLineV(start, end, color)
}

func (v *Viewer) drawHUD() {
	g := v.game
	def := g.Level().Def
	tamed, wild := g.Counts()

	title := def.Title
	if title == "" {
		title = def.Name
	}
	v.hud.Draw(HUDData{
		Title:     "Herd",
		Level:     title,
		Attempt:   g.Attempt(),
		Tamed:     tamed,
		Wild:      wild,
		Goal:      def.RescueGoal,
		Elapsed:   g.Elapsed(),
		TimeGoal:  def.TimeGoal,
		Score:     g.Score(),
		Tick:      g.Tick(),
		TimeScale: v.timeScale,
		FPS:       rl.GetFPS(),
		Paused:    v.paused,
		Boosting:  g.Boosting(),
		Turn:      g.Turn(),
	})

	v.controls.Draw(v.overlays)
	v.tuning.Draw(g.Config())
	v.flock.Draw(v.lastStats)
	if v.showPerf {
		v.perf.Draw(g.PerfStats())
	}

	var breakdown *systems.SteeringResult
	if e, ok := v.inspector.Selected(); ok {
		agents, results := g.Agents()
		for i, a := range agents {
			if a.Entity == e && i < len(results) {
				breakdown = &results[i]
				break
			}
		}
	}
	v.inspector.Draw(breakdown)

	v.drawOutcome()
	v.hud.DrawControls(v.screenW, v.screenH, controlsLegend)
}

func (v *Viewer) drawOutcome() {
	g := v.game
	if v.gameComplete {
		v.hud.DrawOutcome(v.screenW, v.screenH,
			"All levels complete",
			fmt.Sprintf("Total rescued: %d", g.Score()),
			"Enter: play again",
		)
		return
	}

	outcome, reason := g.Outcome()
	tamed, _ := g.Counts()
	goal := g.Level().Def.RescueGoal
	switch outcome {
	case game.LevelComplete:
		v.hud.DrawOutcome(v.screenW, v.screenH,
			"Level complete",
			fmt.Sprintf("Rescued %d of %d needed | Score %d", tamed, goal, g.Score()),
			"Enter: next level | R: retry",
		)
	case game.GameOver:
		v.hud.DrawOutcome(v.screenW, v.screenH,
			"Game over",
			reasonText(reason, tamed, goal),
			"Enter or R: retry",
		)
	}
}

func reasonText(r game.Reason, tamed, goal int) string {
	switch r {
	case game.OutOfBounds:
		return "You flew into a wall"
	case game.OutOfTime:
		return "Out of time"
	case game.OutOfBoids:
		return fmt.Sprintf("Reached the finish with %d of %d boids", tamed, goal)
	default:
		return r.String()
	}
}
