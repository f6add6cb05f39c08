// Package renderer presents the composited surface in a raylib window.
package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/influence/gpu"
)

// Presenter streams a device surface into a window texture every frame.
type Presenter struct {
	texture rl.Texture2D
	pixels  []color.RGBA
	width   int
	height  int
}

// NewPresenter allocates a window texture matching surface. Requires an open window.
func NewPresenter(surface *gpu.Texture) *Presenter {
	p := &Presenter{}
	p.Resize(surface)
	return p
}

// Resize reallocates the window texture when the surface size changed.
func (p *Presenter) Resize(surface *gpu.Texture) {
	w, h := surface.Width(), surface.Height()
	if w == p.width && h == p.height && p.texture.ID != 0 {
		return
	}
	if p.texture.ID != 0 {
		rl.UnloadTexture(p.texture)
	}

	img := rl.GenImageColor(w, h, rl.Black)
	p.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(p.texture, rl.FilterBilinear)

	p.pixels = make([]color.RGBA, w*h)
	p.width, p.height = w, h
}

// Draw uploads surface and draws it stretched over the whole window.
func (p *Presenter) Draw(surface *gpu.Texture) {
	p.Resize(surface)
	SurfaceRGBA(surface, p.pixels)
	rl.UpdateTexture(p.texture, p.pixels)

	src := rl.Rectangle{Width: float32(p.width), Height: float32(p.height)}
	dst := rl.Rectangle{Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())}
	rl.DrawTexturePro(p.texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload releases the window texture.
func (p *Presenter) Unload() {
	if p.texture.ID != 0 {
		rl.UnloadTexture(p.texture)
		p.texture = rl.Texture2D{}
	}
}

// SurfaceRGBA converts t into opaque 8-bit pixels, top row first. dst must
// hold Width*Height entries. Row 0 of the texture is the bottom of the screen.
func SurfaceRGBA(t *gpu.Texture, dst []color.RGBA) {
	w, h := t.Width(), t.Height()
	for y := 0; y < h; y++ {
		row := (h - 1 - y) * w
		for x := 0; x < w; x++ {
			c := t.At(x, y)
			dst[row+x] = color.RGBA{R: To8(c.R), G: To8(c.G), B: To8(c.B), A: 255}
		}
	}
}

// SurfaceImage returns t as an image with the top row first.
func SurfaceImage(t *gpu.Texture) *image.RGBA {
	w, h := t.Width(), t.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	pixels := make([]color.RGBA, w*h)
	SurfaceRGBA(t, pixels)
	for i, c := range pixels {
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// To8 quantizes a unit float channel to a byte, clamping out-of-range and NaN.
func To8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
