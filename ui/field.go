package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/herd/camera"
	"github.com/pthm-cable/herd/level"
)

// FieldLayer rasterizes the level's walls into a screen-sized texture,
// sampling the distance field once per cell.
type FieldLayer struct {
	cell    int32
	cols    int32
	rows    int32
	pixels  []color.RGBA
	texture rl.Texture2D
}

// NewFieldLayer creates a layer covering a screenW by screenH viewport with
// cell-pixel samples.
func NewFieldLayer(screenW, screenH, cell int32) *FieldLayer {
	f := &FieldLayer{cell: cell}
	f.allocate(screenW, screenH)
	return f
}

func (f *FieldLayer) allocate(screenW, screenH int32) {
	f.cols = (screenW + f.cell - 1) / f.cell
	f.rows = (screenH + f.cell - 1) / f.cell
	f.pixels = make([]color.RGBA, f.cols*f.rows)

	img := rl.GenImageColor(int(f.cols), int(f.rows), rl.Black)
	f.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(f.texture, rl.FilterBilinear)
}

// Resize reallocates the texture for a new viewport.
func (f *FieldLayer) Resize(screenW, screenH int32) {
	rl.UnloadTexture(f.texture)
	f.allocate(screenW, screenH)
}

// Update resamples the field under the camera. With distance set, open space
// is shaded by clearance; with finish set, the finish region is tinted.
func (f *FieldLayer) Update(cam *camera.Camera, lvl *level.Level, distance, finish bool) {
	half := float32(f.cell) / 2
	for j := int32(0); j < f.rows; j++ {
		for i := int32(0); i < f.cols; i++ {
			p := cam.ScreenToWorld(float32(i*f.cell)+half, float32(j*f.cell)+half)
			d := lvl.Walls.DistanceToEdge(p)
			f.pixels[j*f.cols+i] = shade(d, distance, finish && lvl.InFinish(p))
		}
	}
	rl.UpdateTexture(f.texture, f.pixels)
}

// Draw stretches the raster over the viewport.
func (f *FieldLayer) Draw() {
	w := float32(f.cols * f.cell)
	h := float32(f.rows * f.cell)
	rl.DrawTexturePro(
		f.texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(f.cols), Height: float32(f.rows)},
		rl.Rectangle{X: 0, Y: 0, Width: w, Height: h},
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
}

// Unload releases the texture.
func (f *FieldLayer) Unload() {
	rl.UnloadTexture(f.texture)
}

// clearanceScale is the distance at which the clearance shading saturates.
const clearanceScale = 600.0

// shade colors one sample: walls are flat, open space is optionally graded
// from warm near a wall to the base open color far from one.
func shade(d float64, distance, inFinish bool) color.RGBA {
	if d <= 0 {
		return ColorWall
	}
	c := ColorOpen
	if distance {
		t := d / clearanceScale
		if t > 1 {
			t = 1
		}
		near := color.RGBA{R: 150, G: 90, B: 60, A: 255}
		c = mix(near, ColorOpen, t)
	}
	if inFinish {
		c = mix(c, color.RGBA{R: ColorFinish.R, G: ColorFinish.G, B: ColorFinish.B, A: 255}, float64(ColorFinish.A)/255)
	}
	return c
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
