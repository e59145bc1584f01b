// Package visualize renders diagnostic overlays: the nested glimpse patch
// rectangles around a focus point, drawn over the source image.
package visualize

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/utils"
)

// RenderGlimpseOverlay draws the k nested patch rectangles for one focus
// location over the image and returns an RGBA copy. sizes is the sensor's
// patch size schedule; rectangles are centered the same way the extractor
// centers its slices, so the overlay shows exactly what was read.
func RenderGlimpseOverlay(img image.Image, loc glimpse.Location, sizes []int, col color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	// copy background
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}

	px := glimpse.Denormalize(b.Dx(), loc.X)
	py := glimpse.Denormalize(b.Dy(), loc.Y)

	for i, size := range sizes {
		x0 := px - size/2
		y0 := py - size/2
		rect := image.Rect(x0, y0, x0+size, y0+size)
		utils.DrawRect(dst, rect, col, 1)
		labelPatch(dst, rect, i, col)
	}
	return dst
}

// labelPatch writes the patch index just inside the rectangle's top-left
// corner, skipped when the rectangle is too small to hold a glyph.
func labelPatch(dst *image.RGBA, rect image.Rectangle, index int, col color.Color) {
	const glyphH = 13
	if rect.Dx() < 2*basicfont.Face7x13.Advance || rect.Dy() < glyphH+2 {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(rect.Min.X+2, rect.Min.Y+glyphH),
	}
	d.DrawString(fmt.Sprintf("%d", index))
}
