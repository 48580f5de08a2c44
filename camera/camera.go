// Package camera provides a 2D follow camera for viewport control.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/geom"
)

// Camera controls the viewport into the simulation world.
// The world is y-up; screen space is y-down.
type Camera struct {
	// Position is the camera center in world coordinates
	Pos r2.Vec

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// Follow behaviour
	SnapDistance float64
	FollowRate   float64

	homeZoom float64
}

// New creates a camera at the origin using the configured zoom and follow
// parameters.
func New(viewportW, viewportH float64, cfg config.CameraConfig) *Camera {
	zoom := cfg.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{
		Zoom:         zoom,
		ViewportW:    viewportW,
		ViewportH:    viewportH,
		MinZoom:      0.05,
		MaxZoom:      4.0,
		SnapDistance: cfg.SnapDistance,
		FollowRate:   cfg.FollowRate,
		homeZoom:     zoom,
	}
}

// Target returns the lookahead point for a subject moving along heading at
// speed: where it will be in one second.
func Target(pos, heading r2.Vec, speed float64) r2.Vec {
	return r2.Add(pos, r2.Scale(speed, heading))
}

// Follow moves the camera toward the subject's lookahead point. Beyond
// SnapDistance it jumps; otherwise it closes dt*FollowRate of the gap.
func (c *Camera) Follow(pos, heading r2.Vec, speed, dt float64) {
	target := Target(pos, heading, speed)
	if r2.Norm(r2.Sub(target, c.Pos)) > c.SnapDistance {
		c.Pos = target
		return
	}
	t := dt * c.FollowRate
	if t > 1 {
		t = 1
	}
	c.Pos = geom.Lerp(c.Pos, target, t)
}

// SnapTo centers the camera on p.
func (c *Camera) SnapTo(p r2.Vec) {
	c.Pos = p
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	d := r2.Sub(p, c.Pos)
	sx = float32(c.ViewportW/2 + d.X*c.Zoom)
	sy = float32(c.ViewportH/2 - d.Y*c.Zoom)
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	dx := (float64(sx) - c.ViewportW/2) / c.Zoom
	dy := (c.ViewportH/2 - float64(sy)) / c.Zoom
	return r2.Add(c.Pos, r2.Vec{X: dx, Y: dy})
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(d float64) float32 {
	return float32(d * c.Zoom)
}

// IsVisible returns true if a circle at p with given radius could be visible
// on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	d := r2.Sub(p, c.Pos)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return abs(d.X) <= halfW && abs(d.Y) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset restores the configured zoom.
func (c *Camera) Reset() {
	c.Zoom = c.homeZoom
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (min, max r2.Vec) {
	half := r2.Vec{X: c.ViewportW / (2 * c.Zoom), Y: c.ViewportH / (2 * c.Zoom)}
	return r2.Sub(c.Pos, half), r2.Add(c.Pos, half)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
